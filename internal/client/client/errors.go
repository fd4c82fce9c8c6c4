package client

import (
	"errors"
	"unicode/utf8"
)

var (
	ErrInvalidURL     = errors.New("invalid url")
	ErrNoData         = errors.New("no data")
	ErrDecodingFailed = errors.New("decoding failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrUnknown        = errors.New("unknown error")
)

// DefaultServerMessage stands in for a server error body that is empty or
// not valid text.
const DefaultServerMessage = "Server error"

// ServerError is any non-2xx, non-401 response. Message is the raw body text.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

func newServerError(status int, body []byte) *ServerError {
	msg := string(body)
	if len(body) == 0 || !utf8.Valid(body) {
		msg = DefaultServerMessage
	}
	return &ServerError{StatusCode: status, Message: msg}
}
