package domain

import "errors"

// Error kinds. Every error produced by the core wraps exactly one of these so
// callers can branch with errors.Is.
var (
	ErrDeviceConnection = errors.New("device connection error")
	ErrProtocolDecode   = errors.New("protocol decode error")
	ErrValidation       = errors.New("validation error")
	ErrInvalidReference = errors.New("invalid reference")
	ErrNotFound         = errors.New("not found")
)

var (
	ErrZoneNotFound     = &Error{Kind: ErrNotFound, Msg: "zone not found"}
	ErrTagNotFound      = &Error{Kind: ErrNotFound, Msg: "tag not found"}
	ErrZoneSelfMapping  = &Error{Kind: ErrInvalidReference, Msg: "invalid reference: mapped_zone_id cannot reference the zone itself"}
	ErrMappedZoneAbsent = &Error{Kind: ErrInvalidReference, Msg: "invalid reference: mapped_zone_id does not exist"}
)

// Error carries a kind plus context about the failed operation.
type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Validation returns a validation error for the named field.
func Validation(field, msg string) error {
	return &Error{Kind: ErrValidation, Op: field, Msg: msg}
}

// DeviceConnection wraps a transport failure talking to a reader.
func DeviceConnection(op string, err error) error {
	return &Error{Kind: ErrDeviceConnection, Op: op, Err: err}
}

// ProtocolDecode reports a malformed frame or line from a reader.
func ProtocolDecode(op, msg string) error {
	return &Error{Kind: ErrProtocolDecode, Op: op, Msg: msg}
}

// Message returns the error text without the operation prefix for kinded errors.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Op != "" && e.Kind == ErrValidation {
			return e.Op + ": " + e.Msg
		}
		msg := e.Msg
		if msg == "" && e.Kind != nil {
			msg = e.Kind.Error()
		}
		return msg
	}
	return err.Error()
}
