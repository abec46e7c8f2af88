package drafting

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrInvalidRequest is returned before any network call when a request is out of range.
var ErrInvalidRequest = errors.New("invalid drafting request")

// ErrorKind classifies drafting failures.
type ErrorKind int

const (
	// Timeout means every attempt timed out.
	Timeout ErrorKind = iota
	// HTTPStatus means the service answered with an error status. Never retried.
	HTTPStatus
	// IncompleteResponse means the body had no choices.
	IncompleteResponse
	// Transport covers every other failure to complete the exchange.
	Transport
)

func (k ErrorKind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case HTTPStatus:
		return "http_status"
	case IncompleteResponse:
		return "incomplete"
	case Transport:
		return "transport"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// DraftError is returned by Generate when no text could be obtained.
type DraftError struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Attempts   int
	Err        error
}

func (e *DraftError) Error() string {
	switch e.Kind {
	case Timeout:
		return fmt.Sprintf("O servidor demorou muito para responder após %d tentativas", e.Attempts)
	case HTTPStatus:
		msg := fmt.Sprintf("Erro HTTP %d", e.StatusCode)
		if e.StatusCode == http.StatusPaymentRequired {
			msg += " - Saldo insuficiente na API"
		}
		return msg + ": " + e.Body
	case IncompleteResponse:
		return "Resposta da API incompleta"
	default:
		return fmt.Sprintf("Erro na requisição: %v", e.Err)
	}
}

func (e *DraftError) Unwrap() error {
	return e.Err
}

// InsufficientBalance reports whether the service refused the call for lack of credit.
func (e *DraftError) InsufficientBalance() bool {
	return e.Kind == HTTPStatus && e.StatusCode == http.StatusPaymentRequired
}

// IsKind reports whether err is a DraftError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var derr *DraftError
	return errors.As(err, &derr) && derr.Kind == kind
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
