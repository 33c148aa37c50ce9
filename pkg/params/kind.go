// SPDX-License-Identifier: MPL-2.0

package params

import (
	"errors"
	"fmt"
)

const (
	// KindString is a free-form text parameter.
	KindString Kind = "string"
	// KindInt is an integer parameter.
	KindInt Kind = "int"
	// KindFloat is a floating-point parameter.
	KindFloat Kind = "float"
	// KindBool is a true/false parameter.
	KindBool Kind = "bool"
	// KindFile is a reference to a single file (local path or remote URI).
	KindFile Kind = "file"
	// KindDir is a reference to a directory (local path or remote URI).
	KindDir Kind = "dir"
)

// ErrInvalidKind is returned when a Kind value is not one of the defined kinds.
var ErrInvalidKind = errors.New("invalid parameter kind")

type (
	// Kind is the base value type of a parameter.
	Kind string

	// InvalidKindError is returned when a Kind value is not recognized.
	// It wraps ErrInvalidKind for errors.Is() compatibility.
	InvalidKindError struct {
		Value Kind
	}
)

// Error implements the error interface for InvalidKindError.
func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid parameter kind %q (valid: string, int, float, bool, file, dir)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// Validate returns nil if the Kind is one of the defined kinds.
func (k Kind) Validate() error {
	switch k {
	case KindString, KindInt, KindFloat, KindBool, KindFile, KindDir:
		return nil
	default:
		return &InvalidKindError{Value: k}
	}
}

// IsReference reports whether values of this kind name a file or directory.
func (k Kind) IsReference() bool {
	return k == KindFile || k == KindDir
}

// schemaType returns the OpenAPI primitive type used for this kind.
func (k Kind) schemaType() string {
	switch k {
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "string"
	}
}
