package accountdelivery

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/account-service/internal/domain"
)

func TestRegisterValidations(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, registerValidations(nil), ErrUnsupportedValidator)
	require.ErrorIs(t, registerValidations(struct{}{}), ErrUnsupportedValidator)

	v := validator.New()
	require.NoError(t, registerValidations(v))

	type request struct {
		Amount  string `validate:"required,money"`
		Balance string `validate:"omitempty,balance"`
	}

	testCases := []struct {
		name    string
		req     request
		wantErr bool
	}{
		{name: "OK", req: request{Amount: "10.5", Balance: "0"}},
		{name: "ZeroAmount", req: request{Amount: "0"}, wantErr: true},
		{name: "NotANumber", req: request{Amount: "ten"}, wantErr: true},
		{name: "HugeExponentAmount", req: request{Amount: "1e-100000000"}, wantErr: true},
		{name: "NegativeBalance", req: request{Amount: "1", Balance: "-1"}, wantErr: true},
		{name: "HugeExponentBalance", req: request{Amount: "1", Balance: "1e100000000"}, wantErr: true},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := v.Struct(tc.req)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	d, err := parseAmount("amount", "12.5")
	require.NoError(t, err)
	require.Equal(t, "12.5", d.String())

	_, err = parseAmount("amount", "twelve")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	require.Equal(t, domain.KindInvalidArgument, domain.KindOf(err))
}
