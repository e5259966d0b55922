// Copyright (c) 2025 BVK Chaitanya

package monitor

import (
	"errors"
	"fmt"
)

// Kind classifies monitoring failures.
type Kind int

const (
	// KindUpstream is any failure from the exchange client library that
	// isn't one of the other kinds.
	KindUpstream Kind = iota
	KindAccountNotFound
	KindUnsupportedExchange
	KindOperationNotSupported
)

func (k Kind) String() string {
	switch k {
	case KindAccountNotFound:
		return "account_not_found"
	case KindUnsupportedExchange:
		return "unsupported_exchange"
	case KindOperationNotSupported:
		return "not_supported"
	default:
		return "upstream"
	}
}

var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrUnsupportedExchange   = errors.New("exchange is not supported")
	ErrOperationNotSupported = errors.New("operation is not supported")
)

// Error is the error type returned by the client cache and the monitoring
// service.
type Error struct {
	Kind Kind

	AccountID  string
	ExchangeID string
	Operation  string

	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindAccountNotFound:
		return fmt.Sprintf("account %q not found", e.AccountID)
	case KindUnsupportedExchange:
		return fmt.Sprintf("exchange %q of account %q is not supported", e.ExchangeID, e.AccountID)
	case KindOperationNotSupported:
		return fmt.Sprintf("exchange %q does not support operation %s", e.ExchangeID, e.Operation)
	}
	if e.Operation == "" {
		return fmt.Sprintf("exchange %q of account %q failed: %v", e.ExchangeID, e.AccountID, e.Err)
	}
	return fmt.Sprintf("%s on exchange %q of account %q failed: %v", e.Operation, e.ExchangeID, e.AccountID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error with the sentinel error of its kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrAccountNotFound:
		return e.Kind == KindAccountNotFound
	case ErrUnsupportedExchange:
		return e.Kind == KindUnsupportedExchange
	case ErrOperationNotSupported:
		return e.Kind == KindOperationNotSupported
	}
	return false
}

// KindOf returns the kind of a monitoring error. Errors of other types are
// reported as KindUpstream.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}
