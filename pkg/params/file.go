// SPDX-License-Identifier: MPL-2.0

package params

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrParamsFile is the sentinel error wrapped by ParamsFileError.
var ErrParamsFile = errors.New("invalid params file")

// ParamsFileError is returned when a params file cannot be read or decoded,
// or names parameters that are not declared.
type ParamsFileError struct {
	Path string
	Err  error
}

// Error implements the error interface for ParamsFileError.
func (e *ParamsFileError) Error() string {
	return fmt.Sprintf("params file %s: %v", e.Path, e.Err)
}

// Unwrap returns ErrParamsFile and the underlying cause.
func (e *ParamsFileError) Unwrap() []error { return []error{ErrParamsFile, e.Err} }

// LoadFile reads runtime values from a YAML, JSON or TOML document whose top
// level maps parameter names to scalars. The format is chosen by extension;
// .toml selects TOML, everything else is decoded as YAML (a JSON superset).
// Null entries are treated as absent.
func (r *Registry) LoadFile(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParamsFileError{Path: path, Err: err}
	}
	values, err := r.Decode(data, formatFor(path))
	if err != nil {
		return nil, &ParamsFileError{Path: path, Err: err}
	}
	return values, nil
}

// Decode parses a params document in the given format ("yaml", "json" or
// "toml") and coerces every entry to its declared kind.
func (r *Registry) Decode(data []byte, format string) (Values, error) {
	raw := map[string]any{}
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decoding TOML: %w", err)
		}
	case "yaml", "json", "":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", strings.ToUpper(defaultString(format, "yaml")), err)
		}
	default:
		return nil, fmt.Errorf("unsupported params format %q", format)
	}
	return r.Coerce(raw)
}

// Coerce converts a decoded name/value map into Values. Every key must be a
// declared parameter and every converted value must satisfy the parameter's
// rendered schema; errors for all offending keys are joined.
func (r *Registry) Coerce(raw map[string]any) (Values, error) {
	values := make(Values, len(raw))
	var errs []error
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		spec, ok := r.Lookup(name)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown parameter %q", name))
			continue
		}
		v, err := spec.Coerce(raw[name])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if v.IsSet() {
			if err := r.ValidateValue(name, v); err != nil {
				errs = append(errs, err)
				continue
			}
		}
		values.Set(name, v)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return values, nil
}

func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
