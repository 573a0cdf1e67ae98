package ferror

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

const (
	FQ_SYNTAX       = "FQSYN"
	FQ_SEMANTIC     = "FQSEM"
	FQ_UNSUPPORTED  = "FQUNS"
	FQ_CONFIG_FAULT = "FQCFG"
	FQ_CONNECTIVITY = "FQNET"
	FQ_BACKEND_EXEC = "FQBCK"
	FQ_UNEXPECTED   = "FQUNX"
)

var existingErrorCodeMap = map[string]string{
	FQ_SYNTAX:       "SyntaxError",
	FQ_SEMANTIC:     "SemanticError",
	FQ_UNSUPPORTED:  "UnsupportedOperationError",
	FQ_CONFIG_FAULT: "ConfigurationFault",
	FQ_CONNECTIVITY: "ConnectivityError",
	FQ_BACKEND_EXEC: "BackendExecutionError",
}

func GetMessageByCode(errorCode string) string {
	rep, ok := existingErrorCodeMap[errorCode]
	if ok {
		return rep
	}
	return "Unexpected error"
}

var _ error = &Error{}

type Error struct {
	Err error

	ErrorCode string
}

func New(errorCode string, format string, a ...any) *Error {
	return &Error{
		Err:       fmt.Errorf(format, a...),
		ErrorCode: errorCode,
	}
}

// Wrap keeps the original error reachable through Unwrap while
// assigning it a classification code.
func Wrap(err error, errorCode string) *Error {
	return &Error{
		Err:       err,
		ErrorCode: errorCode,
	}
}

func (er *Error) Error() string {
	return fmt.Sprintf("%s: %s", GetMessageByCode(er.ErrorCode), er.Err)
}

func (er *Error) Unwrap() error {
	return er.Err
}

// CodeOf classifies any error into the taxonomy. Coded errors keep their
// code; transport-level failures that escaped uncoded count as connectivity
// problems; everything else is unexpected.
func CodeOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.ErrorCode
	}

	var ne net.Error
	var ue *url.Error
	var oe *net.OpError
	if errors.As(err, &ue) || errors.As(err, &oe) || errors.As(err, &ne) {
		return FQ_CONNECTIVITY
	}

	return FQ_UNEXPECTED
}

// HTTPStatus maps a classified error onto the response status the request
// boundary should use.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case FQ_SYNTAX, FQ_SEMANTIC, FQ_UNSUPPORTED, FQ_BACKEND_EXEC:
		return http.StatusBadRequest
	case FQ_CONNECTIVITY:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
