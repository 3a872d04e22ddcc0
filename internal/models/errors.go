package models

import "fmt"

// DomainErrorKind describes the kind of a DomainError.
type DomainErrorKind int

const (
	InvalidLength DomainErrorKind = iota
	InvalidCharacters
	InvalidCombination
	OutOfRange
)

func (k DomainErrorKind) String() string {
	switch k {
	case InvalidLength:
		return "invalid length"
	case InvalidCharacters:
		return "invalid characters"
	case InvalidCombination:
		return "invalid combination"
	case OutOfRange:
		return "out of range"
	}
	return "unknown"
}

// DomainError indicates that a value is out of its domain.
type DomainError struct {
	Kind    DomainErrorKind
	Because string
}

// NewDomainError creates a new domain error of the given kind and a message
// which describes the cause.
func NewDomainError(kind DomainErrorKind, because string) *DomainError {
	return &DomainError{Kind: kind, Because: because}
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Because)
}
