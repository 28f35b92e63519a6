package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidArgument indicates a missing or malformed argument.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientFunds indicates that the account does not have sufficient balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrTransferToSameAccount indicates a transfer whose source and destination are the same account.
	ErrTransferToSameAccount = errors.New("transfer to the same account is forbidden")
)

// InvalidArgumentError describes which argument was rejected and why.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidArgument) hold.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NoSuchAccountError is returned when the account with ID does not exist.
type NoSuchAccountError struct {
	ID int64
}

func (e *NoSuchAccountError) Error() string {
	return fmt.Sprintf("there's no account with id: %d", e.ID)
}

// Is makes errors.Is(err, ErrAccountNotFound) hold.
func (e *NoSuchAccountError) Is(target error) bool {
	return target == ErrAccountNotFound
}

// InsufficientFundsError is returned when a withdrawal would make the balance negative.
type InsufficientFundsError struct {
	ID        int64
	Current   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("current amount (%s) is less than amount to withdraw/transfer (%s)",
		e.Current.String(), e.Requested.String())
}

// Is makes errors.Is(err, ErrInsufficientFunds) hold.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// Kind classifies an error returned by the account service.
type Kind int

// Error kinds the delivery layer has to translate.
const (
	KindNone Kind = iota
	KindInvalidArgument
	KindNoSuchAccount
	KindInsufficientFunds
	KindTransferToSameAccount
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNoSuchAccount:
		return "no_such_account"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindTransferToSameAccount:
		return "transfer_to_same_account"
	default:
		return "internal"
	}
}

// KindOf returns the kind of err. Errors outside the taxonomy are KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrAccountNotFound):
		return KindNoSuchAccount
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrTransferToSameAccount):
		return KindTransferToSameAccount
	default:
		return KindInternal
	}
}
