// Package domain provides defenitions of all entities.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// Precision is the maximum total number of digits of a balance.
	Precision = 37
	// Scale is the maximum number of fractional digits of a balance.
	Scale = 8
)

// Account holds the balance of a single account.
//
// ID is zero until the account is persisted and never changes afterwards.
type Account struct {
	ID      int64           `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

// NewAccount returns a not yet persisted account with the given balance.
func NewAccount(balance decimal.Decimal) Account {
	return Account{Balance: balance}
}

// Deposit adds amount to the balance.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}

	balance := a.Balance.Add(amount)
	if !Representable(balance) {
		return &InvalidArgumentError{Field: "amount", Reason: "resulting balance exceeds the supported precision"}
	}

	a.Balance = balance

	return nil
}

// Withdraw subtracts amount from the balance.
//
// The balance is left unchanged when it is less than amount.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}

	if a.Balance.LessThan(amount) {
		return &InsufficientFundsError{
			ID:        a.ID,
			Current:   a.Balance,
			Requested: amount,
		}
	}

	a.Balance = a.Balance.Sub(amount)

	return nil
}

// Representable reports whether d fits into a NUMERIC(Precision, Scale) value.
//
// Only the digits of the coefficient and the exponent are inspected, so values with huge
// exponents are rejected without being rescaled.
func Representable(d decimal.Decimal) bool {
	if d.IsZero() {
		return true
	}

	digits := strings.TrimPrefix(d.Coefficient().String(), "-")
	exp := int64(d.Exponent())

	// Trailing zeros of the coefficient do not count as fractional digits.
	if exp < -Scale {
		zeros := int64(len(digits) - len(strings.TrimRight(digits, "0")))
		if exp+zeros < -Scale {
			return false
		}
	}

	return int64(len(digits))+exp <= Precision-Scale
}

// ValidateAmount checks that amount can be deposited, withdrawn or transferred.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &InvalidArgumentError{Field: "amount", Reason: "must be positive"}
	}

	if !Representable(amount) {
		return &InvalidArgumentError{Field: "amount", Reason: "exceeds the supported precision"}
	}

	return nil
}

// ValidateBalance checks that balance can be used as the initial balance of an account.
func ValidateBalance(balance decimal.Decimal) error {
	if balance.IsNegative() {
		return &InvalidArgumentError{Field: "balance", Reason: "must not be negative"}
	}

	if !Representable(balance) {
		return &InvalidArgumentError{Field: "balance", Reason: "exceeds the supported precision"}
	}

	return nil
}

// ValidateID checks that id can identify a persisted account.
func ValidateID(field string, id int64) error {
	if id <= 0 {
		return &InvalidArgumentError{Field: field, Reason: "must be positive"}
	}

	return nil
}
