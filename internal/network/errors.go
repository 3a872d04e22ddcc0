package network

import "fmt"

// DeserializeErrorKind describes the kind of a DeserializeError.
type DeserializeErrorKind int

const (
	UnknownHeader DeserializeErrorKind = iota
	NoMorePayloadItems
	InvalidEnumValue
	MessageLengthExceeded
	InvalidUtf8
	ParseInt
	StructDeserialization
)

func (k DeserializeErrorKind) String() string {
	switch k {
	case UnknownHeader:
		return "unknown header"
	case NoMorePayloadItems:
		return "further payload item was expected, but not present"
	case InvalidEnumValue:
		return "invalid enum value"
	case MessageLengthExceeded:
		return "string segment is too long to be a valid message"
	case InvalidUtf8:
		return "invalid UTF-8 byte sequence"
	case ParseInt:
		return "integer can't be properly deserialized"
	case StructDeserialization:
		return "struct can't be properly deserialized"
	}
	return "unknown"
}

// StructKind names the domain entity whose deserialization failed.
type StructKind int

const (
	StructNickname StructKind = iota
	StructShipKind
	StructPosition
	StructOrientation
	StructWho
	StructPlacement
	StructLayout
	StructShipsPlacements
	StructHits
	StructRestoreState
)

func (k StructKind) String() string {
	switch k {
	case StructNickname:
		return "Nickname"
	case StructShipKind:
		return "ShipKind"
	case StructPosition:
		return "Position"
	case StructOrientation:
		return "Orientation"
	case StructWho:
		return "Who"
	case StructPlacement:
		return "Placement"
	case StructLayout:
		return "Layout"
	case StructShipsPlacements:
		return "ShipsPlacements"
	case StructHits:
		return "Hits"
	case StructRestoreState:
		return "RestoreState"
	}
	return "unknown"
}

// DeserializeError indicates that a message or a part of it can't be
// deserialized from the wire form.
type DeserializeError struct {
	Kind DeserializeErrorKind
	// Struct is set when Kind is StructDeserialization.
	Struct StructKind
	// Cause is set for ParseInt and StructDeserialization errors.
	Cause error
}

func newError(kind DeserializeErrorKind) *DeserializeError {
	return &DeserializeError{Kind: kind}
}

func parseIntError(cause error) *DeserializeError {
	return &DeserializeError{Kind: ParseInt, Cause: cause}
}

func structError(s StructKind, cause error) *DeserializeError {
	return &DeserializeError{Kind: StructDeserialization, Struct: s, Cause: cause}
}

func (e *DeserializeError) Error() string {
	switch e.Kind {
	case ParseInt:
		return fmt.Sprintf("deserialize error: %s: %v", e.Kind, e.Cause)
	case StructDeserialization:
		return fmt.Sprintf("deserialize error: %s can't be properly deserialized: %v", e.Struct, e.Cause)
	}
	return fmt.Sprintf("deserialize error: %s", e.Kind)
}

func (e *DeserializeError) Unwrap() error {
	return e.Cause
}
