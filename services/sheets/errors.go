package sheets

import (
	"errors"
	"fmt"
)

// ErrorKind classifies gateway failures.
type ErrorKind int

const (
	// Unreachable covers timeouts, refused connections and non-2xx responses.
	Unreachable ErrorKind = iota
	// MalformedResponse means the store answered but not with a JSON array.
	MalformedResponse
	// Rejected means a write was answered with anything other than the literal OK.
	Rejected
)

func (k ErrorKind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case MalformedResponse:
		return "malformed response"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// GatewayError is returned by every gateway operation that fails.
type GatewayError struct {
	Kind       ErrorKind
	RecordType string
	StatusCode int    // HTTP status when one was received
	Body       string // raw response body, kept verbatim for display
	Err        error
}

func (e *GatewayError) Error() string {
	switch {
	case e.Kind == Rejected:
		return fmt.Sprintf("external store rejected %s record: %s", e.RecordType, e.Body)
	case e.StatusCode > 0:
		return fmt.Sprintf("external store %s for %s: HTTP %d", e.Kind, e.RecordType, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("external store %s for %s: %v", e.Kind, e.RecordType, e.Err)
	default:
		return fmt.Sprintf("external store %s for %s", e.Kind, e.RecordType)
	}
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a GatewayError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var gerr *GatewayError
	return errors.As(err, &gerr) && gerr.Kind == kind
}

// Warning renders err as the banner text shown when a page degrades to "no data".
func Warning(err error) string {
	if err == nil {
		return ""
	}
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		switch gerr.Kind {
		case MalformedResponse:
			return fmt.Sprintf("Resposta inválida para o tipo '%s'. O servidor não retornou JSON válido.", gerr.RecordType)
		case Rejected:
			return fmt.Sprintf("Erro no envio (%s): %s", gerr.RecordType, gerr.Body)
		}
		return fmt.Sprintf("Erro ao carregar dados (%s): %s", gerr.RecordType, gerr.Error())
	}
	return err.Error()
}
