// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/account-service/internal/accountdelivery"
	"github.com/go-petr/account-service/internal/accountrepo"
	"github.com/go-petr/account-service/internal/accountservice"
	"github.com/go-petr/account-service/internal/lockregistry"
	"github.com/go-petr/account-service/internal/middleware"
	"github.com/go-petr/account-service/pkg/configpkg"
)

// DriverMemory keeps accounts in process memory instead of a database.
const DriverMemory = "memory"

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB       *sql.DB
	Engine   *gin.Engine
	Config   configpkg.Config
	Registry *lockregistry.Registry
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
//
// conn is only used when config.DBDriver is not DriverMemory. Registry is set when
// config.LockStrategy selects the lock registry; its sweeper is left to the caller.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	initialBalance, err := decimal.NewFromString(config.InitialBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid initial balance %q: %w", config.InitialBalance, err)
	}

	var accountRepo accountservice.Repo

	if config.DBDriver == DriverMemory {
		accountRepo = accountrepo.NewRepoMem()
	} else {
		if conn == nil {
			return nil, errors.New("database connection is required for driver " + config.DBDriver)
		}

		accountRepo = accountrepo.NewRepoPGS(conn)
	}

	server := &Server{
		DB:     conn,
		Config: config,
	}

	var locker accountservice.Locker

	switch config.LockStrategy {
	case configpkg.LockStrategyRegistry, "":
		server.Registry = lockregistry.New()
		locker = server.Registry
	case configpkg.LockStrategyStriped:
		locker = lockregistry.NewStriped(config.LockStripes)
	default:
		return nil, fmt.Errorf("unknown lock strategy %q", config.LockStrategy)
	}

	accountService := accountservice.New(accountRepo, locker)
	accountHandler := accountdelivery.NewHandler(accountService, initialBalance)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))

	engine.GET("/health", accountHandler.Health)

	engine.POST("/accounts", accountHandler.Create)
	engine.GET("/accounts", accountHandler.List)
	engine.GET("/accounts/:id", accountHandler.Get)
	engine.PUT("/accounts/:id/deposit", accountHandler.Deposit)
	engine.PUT("/accounts/:id/withdraw", accountHandler.Withdraw)
	engine.DELETE("/accounts/:id", accountHandler.Delete)

	engine.PUT("/transfers", accountHandler.Transfer)

	if err := accountdelivery.RegisterValidations(); err != nil {
		return nil, fmt.Errorf("cannot register money validators: %w", err)
	}

	server.Engine = engine

	return server, nil
}
