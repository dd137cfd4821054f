// Package payment talks to the card processor.
//
// The HTTP layer never sees processor SDK types. It works with Intent values
// and amounts in minor currency units (cents for usd).
package payment

import (
	"context"
	"errors"
	"math"
)

// ErrInvalidAmount is returned for prices that cannot be charged.
var ErrInvalidAmount = errors.New("payment: price must be a positive finite number")

// ErrIntentNotFound is wrapped by GetIntent errors for unknown intent ids.
var ErrIntentNotFound = errors.New("payment: intent not found")

// processorError carries the processor's own message, which clients display,
// while still matching a sentinel with errors.Is.
type processorError struct {
	msg string
	err error
}

func (e *processorError) Error() string { return e.msg }
func (e *processorError) Unwrap() error { return e.err }

// Status values mirror the processor's payment intent lifecycle.
const (
	StatusRequiresPaymentMethod = "requires_payment_method"
	StatusProcessing            = "processing"
	StatusSucceeded             = "succeeded"
	StatusCanceled              = "canceled"
)

// IntentRequest asks for a card payment of Amount minor units. Email, when
// set, binds the intent to that payer.
type IntentRequest struct {
	Amount   int64
	Currency string
	Email    string
}

// Intent is a processor-side payment authorization.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
	Email        string
}

// Processor creates payment intents and reports their state.
type Processor interface {
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
	GetIntent(ctx context.Context, id string) (Intent, error)
}

// MinorUnits converts a price in whole currency units to minor units,
// rounding to the nearest cent: 12.34 becomes 1234.
func MinorUnits(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidAmount
	}
	cents := math.Round(price * 100)
	if cents < 1 || cents > math.MaxInt64/2 {
		return 0, ErrInvalidAmount
	}
	return int64(cents), nil
}

// FromMinorUnits converts back to whole currency units.
func FromMinorUnits(cents int64) float64 {
	return float64(cents) / 100
}
