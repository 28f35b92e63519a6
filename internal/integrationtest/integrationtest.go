// Package integrationtest provides server and db helpers used in integration tests.
package integrationtest

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/go-petr/account-service/cmd/httpserver"
	"github.com/go-petr/account-service/internal/middleware"
	"github.com/go-petr/account-service/pkg/configpkg"
	"github.com/go-petr/account-service/pkg/dbpkg"
	"github.com/go-petr/account-service/pkg/web"
)

// SetupServer returns test server backed by driver.
//
// For a database driver the accounts table is truncated after the test.
func SetupServer(t *testing.T, driver string) *httpserver.Server {
	t.Helper()

	config, err := configpkg.Load("../../configs")
	if err != nil {
		t.Fatalf(`configpkg.Load("../../configs") returned error: %v`, err)
	}

	config.DBDriver = driver

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.CreateLogger(config)

	var db *sql.DB
	if driver != httpserver.DriverMemory {
		db = SetupDB(t, config.DBDriver, config.DBSource)
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		t.Fatalf(`httpserver.New(db, logger, config) returned error: %v`, err)
	}

	return server
}

// Flush flushes all db tables without droping.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	var tables string

	const query = `
	SELECT string_agg(table_name, ', ')
	FROM information_schema.tables
	WHERE table_schema='public';`

	row := db.QueryRow(query)

	err := row.Scan(&tables)
	if err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}

	if _, err := db.Exec(`TRUNCATE TABLE ` + tables + " RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB sets up connection with database for testing and cleans it up afterwards.
func SetupDB(t *testing.T, driver, source string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	Flush(t, db)

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}

// Do sends a request with a JSON body to server and decodes the response into res.
//
// body is skipped when nil. The status code of the response is returned.
func Do(t *testing.T, server http.Handler, method, url string, body any, res *web.Response) int {
	t.Helper()

	var reqBody bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			t.Fatalf("Encoding request body error: %v", err)
		}
	}

	req := httptest.NewRequest(method, url, &reqBody)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	if err := json.NewDecoder(recorder.Body).Decode(res); err != nil {
		t.Fatalf("Decoding response body error: %v", err)
	}

	return recorder.Code
}
