// SPDX-License-Identifier: MPL-2.0

package params

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

type (
	// Value is a typed parameter value. The zero Value is absent.
	Value struct {
		kind Kind
		set  bool
		str  string
		num  int64
		real float64
		flag bool
	}

	// Values holds the runtime values supplied for one execution, keyed by
	// parameter name. Names missing from the map are absent.
	Values map[string]Value
)

// Absent returns the absent value.
func Absent() Value { return Value{} }

// String returns a present string value.
func String(s string) Value { return Value{kind: KindString, set: true, str: s} }

// Int returns a present integer value.
func Int(n int64) Value { return Value{kind: KindInt, set: true, num: n} }

// Float returns a present floating-point value.
func Float(f float64) Value { return Value{kind: KindFloat, set: true, real: f} }

// Bool returns a present boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, set: true, flag: b} }

// File returns a present file reference.
func File(path string) Value { return Value{kind: KindFile, set: true, str: path} }

// Dir returns a present directory reference.
func Dir(path string) Value { return Value{kind: KindDir, set: true, str: path} }

// IsSet reports whether the value is present.
func (v Value) IsSet() bool { return v.set }

// Kind returns the kind of a present value, or "" when absent.
func (v Value) Kind() Kind { return v.kind }

// Token renders the value as a single command-line token.
// Booleans become "true"/"false", floats use the shortest exact decimal form
// and references render their resolved path. Absent values render as "".
func (v Value) Token() string {
	if !v.set {
		return ""
	}
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.real, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindFile, KindDir:
		return ResolveReference(v.str)
	default:
		return v.str
	}
}

// Interface returns the value as a plain Go value suitable for JSON encoding
// and schema validation, or nil when absent.
func (v Value) Interface() any {
	if !v.set {
		return nil
	}
	switch v.kind {
	case KindInt:
		return v.num
	case KindFloat:
		return v.real
	case KindBool:
		return v.flag
	default:
		return v.str
	}
}

// Equal reports whether two values have the same presence, kind and content.
func (v Value) Equal(o Value) bool {
	return v == o
}

// GoString implements fmt.GoStringer for test diagnostics.
func (v Value) GoString() string {
	if !v.set {
		return "params.Absent()"
	}
	return fmt.Sprintf("params.Value{%s: %q}", v.kind, v.Token())
}

// ResolveReference returns the path string passed to the pipeline for a file
// or directory reference. Remote URIs (scheme://...) are passed through,
// local paths are cleaned and made absolute.
func ResolveReference(ref string) string {
	if ref == "" || strings.Contains(ref, "://") {
		return ref
	}
	if abs, err := filepath.Abs(ref); err == nil {
		return abs
	}
	return filepath.Clean(ref)
}

// Get returns the value for name, or the absent value.
func (vs Values) Get(name string) Value {
	if vs == nil {
		return Value{}
	}
	return vs[name]
}

// Set stores a value for name, allocating the map on first use. Setting an
// absent value removes the entry.
func (vs *Values) Set(name string, v Value) {
	if !v.IsSet() {
		delete(*vs, name)
		return
	}
	if *vs == nil {
		*vs = make(Values)
	}
	(*vs)[name] = v
}

// Merge returns a new Values with entries of override replacing those of vs.
func (vs Values) Merge(override Values) Values {
	out := make(Values, len(vs)+len(override))
	maps.Copy(out, vs)
	maps.Copy(out, override)
	return out
}

// Names returns the sorted names of all present values.
func (vs Values) Names() []string {
	return slices.Sorted(maps.Keys(vs))
}
