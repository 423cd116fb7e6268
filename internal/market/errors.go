package market

import (
	"errors"
	"fmt"
)

// ErrInvalidAmount is returned when an amount is not a finite number.
var ErrInvalidAmount = errors.New("amount must be a valid finite number")

// UnknownCurrencyError reports a currency code that is neither "usd" nor
// part of the price snapshot. Side is "from" or "to".
type UnknownCurrencyError struct {
	Side string
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown %s currency %q", e.Side, e.Code)
}

// UpstreamFetchError wraps any failure talking to an upstream API.
type UpstreamFetchError struct {
	Op  string
	Err error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("upstream fetch %s: %v", e.Op, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

// TokenNotFoundError is returned when upstream has no coin with ID.
type TokenNotFoundError struct {
	ID string
}

func (e *TokenNotFoundError) Error() string {
	return fmt.Sprintf("token %q not found", e.ID)
}
