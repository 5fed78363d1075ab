package gateway

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a request failed.
type FailureKind int

const (
	// KindRequest means the request could not be built.
	KindRequest FailureKind = iota
	// KindNetwork covers connection errors, timeouts and cancellation.
	KindNetwork
	// KindHTTP is a non-2xx response.
	KindHTTP
	// KindDecode is a 2xx response whose payload did not parse.
	KindDecode
)

func (k FailureKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Failure is the error returned for every unsuccessful admin API call.
type Failure struct {
	Op         string
	Kind       FailureKind
	StatusCode int
	RequestID  string
	Err        error
}

func (f *Failure) Error() string {
	if f.Kind == KindHTTP {
		return fmt.Sprintf("%s: %s error (status %d)", f.Op, f.Kind, f.StatusCode)
	}
	return fmt.Sprintf("%s: %s error: %v", f.Op, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Unauthorized reports whether the backend rejected the admin key.
func (f *Failure) Unauthorized() bool {
	return f.Kind == KindHTTP && (f.StatusCode == 401 || f.StatusCode == 403)
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// Describe renders err for the operator.
func Describe(err error) string {
	f, ok := AsFailure(err)
	if !ok {
		return err.Error()
	}
	switch {
	case f.Unauthorized():
		return "admin key rejected by the gateway"
	case f.Kind == KindHTTP:
		return fmt.Sprintf("gateway returned status %d", f.StatusCode)
	case f.Kind == KindDecode:
		return "gateway returned an unreadable response"
	case f.Kind == KindNetwork:
		return "gateway unreachable"
	default:
		return f.Error()
	}
}
