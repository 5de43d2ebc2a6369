package protocol

import (
	"github.com/vango-dev/didact/internal/errors"
)

// ErrorMessage is sent when an error occurs.
type ErrorMessage struct {
	Code    string // Registered error code ("E063")
	Message string // Human-readable error message
	Fatal   bool   // If true, the connection will be closed
}

// NewErrorMessage builds an ErrorMessage from err. Errors without a
// registered code are reported under fallback.
func NewErrorMessage(err error, fallback string, fatal bool) *ErrorMessage {
	de := errors.FromError(err, fallback)
	msg := de.Message
	if de.Detail != "" {
		msg += ": " + de.Detail
	}
	if de.Wrapped != nil {
		msg += " (" + de.Wrapped.Error() + ")"
	}
	return &ErrorMessage{Code: de.Code, Message: msg, Fatal: fatal}
}

// EncodeErrorMessage encodes an ErrorMessage to bytes.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	EncodeErrorMessageTo(e, em)
	return e.Bytes()
}

// EncodeErrorMessageTo encodes an ErrorMessage using the provided encoder.
func EncodeErrorMessageTo(e *Encoder, em *ErrorMessage) {
	e.WriteString(em.Code)
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
}

// DecodeErrorMessage decodes an ErrorMessage from bytes.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	return DecodeErrorMessageFrom(NewDecoder(data))
}

// DecodeErrorMessageFrom decodes an ErrorMessage from a decoder.
func DecodeErrorMessageFrom(d *Decoder) (*ErrorMessage, error) {
	code, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	msg, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	fatal, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	return &ErrorMessage{Code: code, Message: msg, Fatal: fatal}, nil
}
