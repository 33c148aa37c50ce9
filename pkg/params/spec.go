// SPDX-License-Identifier: MPL-2.0

package params

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxNameLength is the maximum length of a parameter name.
const MaxNameLength = 128

var (
	// ErrInvalidSpec is the sentinel error wrapped by InvalidSpecError.
	ErrInvalidSpec = errors.New("invalid parameter spec")
	// ErrInvalidValue is the sentinel error wrapped by InvalidValueError.
	ErrInvalidValue = errors.New("invalid parameter value")

	namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
)

type (
	// Spec describes one pipeline parameter.
	Spec struct {
		// Name is the parameter name; it doubles as the pipeline flag (--<name>).
		Name string
		// Kind is the base value type.
		Kind Kind
		// Required marks mandatory parameters. Required parameters must resolve
		// to a non-empty value before the pipeline is launched.
		Required bool
		// Output marks a platform-managed output location (directory kinds only).
		// The platform writes the execution's artifacts back to it.
		Output bool
		// Default is the value used when no runtime value is supplied.
		// The zero Value means the parameter has no default.
		Default Value
		// Section starts a new UI section with this title. Empty continues
		// the previous section.
		Section string
		// Description is the Markdown help text shown to users.
		Description string
	}

	// InvalidSpecError is returned when a Spec has invalid fields.
	// It wraps ErrInvalidSpec for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidSpecError struct {
		Name        string
		FieldErrors []error
	}

	// InvalidValueError is returned when a runtime value does not conform to
	// the parameter's kind.
	InvalidValueError struct {
		Name   string
		Kind   Kind
		Input  string
		Reason string
	}
)

// Error implements the error interface for InvalidSpecError.
func (e *InvalidSpecError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("invalid parameter %q: %s", e.Name, strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidSpec for errors.Is() compatibility.
func (e *InvalidSpecError) Unwrap() error { return ErrInvalidSpec }

// Error implements the error interface for InvalidValueError.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("parameter %q value %q is invalid: %s", e.Name, e.Input, e.Reason)
}

// Unwrap returns ErrInvalidValue for errors.Is() compatibility.
func (e *InvalidValueError) Unwrap() error { return ErrInvalidValue }

// Type returns the semantic type label shown in schemas and listings,
// e.g. "int", "optional-string" or "optional-output-dir".
func (s Spec) Type() string {
	kind := string(s.Kind)
	if s.Output {
		kind = "output-" + kind
	}
	if s.Required {
		return kind
	}
	return "optional-" + kind
}

// Summary returns the first line of the description, without Markdown
// emphasis, for use as one-line usage text.
func (s Spec) Summary() string {
	line, _, _ := strings.Cut(strings.TrimSpace(s.Description), "\n")
	line = strings.NewReplacer("**", "", "`", "").Replace(line)
	return strings.TrimSpace(line)
}

// Validate checks the descriptor itself: name syntax, kind, the output
// capability and that the default conforms to the kind.
func (s Spec) Validate() error {
	var errs []error
	switch {
	case s.Name == "":
		errs = append(errs, errors.New("name must not be empty"))
	case len(s.Name) > MaxNameLength:
		errs = append(errs, fmt.Errorf("name exceeds %d characters", MaxNameLength))
	case !namePattern.MatchString(s.Name):
		errs = append(errs, errors.New("name must start with a letter and contain only letters, digits and underscores"))
	}
	if err := s.Kind.Validate(); err != nil {
		errs = append(errs, err)
	}
	if s.Output && s.Kind != KindDir {
		errs = append(errs, fmt.Errorf("output capability requires kind %q, got %q", KindDir, s.Kind))
	}
	if s.Default.IsSet() && s.Default.Kind() != s.Kind {
		errs = append(errs, fmt.Errorf("default of kind %q does not match declared kind %q", s.Default.Kind(), s.Kind))
	}
	if len(errs) > 0 {
		return &InvalidSpecError{Name: s.Name, FieldErrors: errs}
	}
	return nil
}

// ParseValue converts text (from a CLI flag or a params file) into a Value
// of the parameter's kind.
func (s Spec) ParseValue(text string) (Value, error) {
	switch s.Kind {
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		return Value{}, s.invalid(text, "must be 'true' or 'false'")
	case KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return Value{}, s.invalid(text, "must be a valid integer")
		}
		return Int(n), nil
	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, s.invalid(text, "must be a valid floating-point number")
		}
		return Float(f), nil
	case KindFile:
		return File(text), nil
	case KindDir:
		return Dir(text), nil
	default:
		return String(text), nil
	}
}

// Coerce converts a decoded YAML, JSON or TOML scalar into a Value of the
// parameter's kind. nil becomes the absent value.
func (s Spec) Coerce(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Value{}, nil
	case Value:
		if v.IsSet() && v.Kind() != s.Kind {
			return Value{}, s.invalid(v.Token(), fmt.Sprintf("expected %s, got %s", s.Kind, v.Kind()))
		}
		return v, nil
	case string:
		return s.ParseValue(v)
	case bool:
		if s.Kind == KindBool {
			return Bool(v), nil
		}
		return s.coerceScalar(strconv.FormatBool(v), false)
	case int:
		return s.coerceInteger(int64(v))
	case int64:
		return s.coerceInteger(v)
	case uint64:
		if v > math.MaxInt64 {
			return Value{}, s.invalid(strconv.FormatUint(v, 10), "integer overflows int64")
		}
		return s.coerceInteger(int64(v))
	case float64:
		return s.coerceFloat(v)
	default:
		return Value{}, s.invalid(fmt.Sprint(raw), fmt.Sprintf("unsupported value type %T", raw))
	}
}

func (s Spec) coerceInteger(n int64) (Value, error) {
	switch s.Kind {
	case KindInt:
		return Int(n), nil
	case KindFloat:
		return Float(float64(n)), nil
	}
	return s.coerceScalar(strconv.FormatInt(n, 10), true)
}

func (s Spec) coerceFloat(f float64) (Value, error) {
	switch s.Kind {
	case KindFloat:
		return Float(f), nil
	case KindInt:
		if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
			return Value{}, s.invalid(strconv.FormatFloat(f, 'f', -1, 64), "must be a valid integer")
		}
		return Int(int64(f)), nil
	}
	return s.coerceScalar(strconv.FormatFloat(f, 'f', -1, 64), true)
}

// coerceScalar accepts a non-string scalar for textual kinds. Parameters such
// as allow_unmatched are declared as strings but commonly written as bare
// booleans or numbers in YAML.
func (s Spec) coerceScalar(text string, numeric bool) (Value, error) {
	switch s.Kind {
	case KindString, KindFile, KindDir:
		return s.ParseValue(text)
	case KindBool:
		return Value{}, s.invalid(text, "must be 'true' or 'false'")
	}
	if numeric {
		return s.ParseValue(text)
	}
	return Value{}, s.invalid(text, fmt.Sprintf("cannot convert to %s", s.Kind))
}

func (s Spec) invalid(input, reason string) error {
	return &InvalidValueError{Name: s.Name, Kind: s.Kind, Input: input, Reason: reason}
}
