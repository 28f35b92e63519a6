package httpserver_test

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/account-service/cmd/httpserver"
	"github.com/go-petr/account-service/internal/accountdelivery"
	"github.com/go-petr/account-service/pkg/configpkg"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name         string
		config       configpkg.Config
		wantErr      bool
		wantRegistry bool
	}{
		{
			name:         "Registry",
			config:       configpkg.Config{DBDriver: httpserver.DriverMemory, InitialBalance: "0", LockStrategy: configpkg.LockStrategyRegistry},
			wantRegistry: true,
		},
		{
			name:   "Striped",
			config: configpkg.Config{DBDriver: httpserver.DriverMemory, InitialBalance: "1.5", LockStrategy: configpkg.LockStrategyStriped, LockStripes: 8},
		},
		{
			name:    "UnknownLockStrategy",
			config:  configpkg.Config{DBDriver: httpserver.DriverMemory, InitialBalance: "0", LockStrategy: "global"},
			wantErr: true,
		},
		{
			name:    "InvalidInitialBalance",
			config:  configpkg.Config{DBDriver: httpserver.DriverMemory, InitialBalance: "ten"},
			wantErr: true,
		},
		{
			name:    "PostgresWithoutConnection",
			config:  configpkg.Config{DBDriver: "postgres", InitialBalance: "0"},
			wantErr: true,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			server, err := httpserver.New(nil, zerolog.Nop(), tc.config)
			if tc.wantErr {
				require.Error(t, err)
				require.Nil(t, server)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, server.Engine)
			require.Equal(t, tc.wantRegistry, server.Registry != nil)
		})
	}
}

type plainValidator struct{}

func (plainValidator) ValidateStruct(any) error { return nil }
func (plainValidator) Engine() any              { return nil }

func TestNewUnsupportedValidator(t *testing.T) {
	original := binding.Validator
	binding.Validator = plainValidator{}

	t.Cleanup(func() { binding.Validator = original })

	config := configpkg.Config{DBDriver: httpserver.DriverMemory, InitialBalance: "0"}

	server, err := httpserver.New(nil, zerolog.Nop(), config)
	require.ErrorIs(t, err, accountdelivery.ErrUnsupportedValidator)
	require.Nil(t, server)
}
