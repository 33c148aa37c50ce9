// SPDX-License-Identifier: MPL-2.0

package params

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidRegistry is the sentinel error wrapped by InvalidRegistryError.
var ErrInvalidRegistry = errors.New("invalid parameter registry")

type (
	// Registry is the ordered, immutable set of parameter descriptors of one
	// pipeline. It is safe for concurrent use once constructed.
	Registry struct {
		specs []Spec
		index map[string]int
	}

	// Section is a run of consecutive specs sharing one UI section title.
	Section struct {
		Title string
		Specs []Spec
	}

	// InvalidRegistryError is returned by New when the descriptor list is
	// inconsistent. It collects every problem found, not just the first.
	InvalidRegistryError struct {
		Problems []error
	}
)

// Error implements the error interface for InvalidRegistryError.
func (e *InvalidRegistryError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("invalid parameter registry: %v", e.Problems[0])
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid parameter registry (%d problems):", len(e.Problems))
	for _, p := range e.Problems {
		sb.WriteString("\n  - ")
		sb.WriteString(p.Error())
	}
	return sb.String()
}

// Unwrap returns ErrInvalidRegistry and the individual problems, so both the
// sentinel and field-level errors (e.g. ErrInvalidSpec) match errors.Is().
func (e *InvalidRegistryError) Unwrap() []error {
	return append([]error{ErrInvalidRegistry}, e.Problems...)
}

// New builds a Registry from specs in declaration order. Every spec is
// validated and names must be unique.
func New(specs ...Spec) (*Registry, error) {
	r := &Registry{
		specs: make([]Spec, 0, len(specs)),
		index: make(map[string]int, len(specs)),
	}

	var problems []error
	for i, s := range specs {
		if err := s.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("spec #%d: %w", i, err))
			continue
		}
		if prev, dup := r.index[s.Name]; dup {
			problems = append(problems, fmt.Errorf("duplicate parameter name %q (specs #%d and #%d)", s.Name, prev, i))
			continue
		}
		r.index[s.Name] = len(r.specs)
		r.specs = append(r.specs, s)
	}
	if len(problems) > 0 {
		return nil, &InvalidRegistryError{Problems: problems}
	}
	return r, nil
}

// MustNew is like New but panics on error. It is meant for registries
// declared in code, where an invalid list is a programming error.
func MustNew(specs ...Spec) *Registry {
	r, err := New(specs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the spec named name.
func (r *Registry) Lookup(name string) (Spec, bool) {
	i, ok := r.index[name]
	if !ok {
		return Spec{}, false
	}
	return r.specs[i], true
}

// Specs returns all specs in declaration order. The returned slice is a copy.
func (r *Registry) Specs() []Spec {
	return slices.Clone(r.specs)
}

// Len returns the number of declared parameters.
func (r *Registry) Len() int { return len(r.specs) }

// Names returns parameter names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.specs))
	for i, s := range r.specs {
		names[i] = s.Name
	}
	return names
}

// Sections groups specs by section title. A spec with an empty Section
// continues the previous section; specs before the first titled spec form
// an untitled leading section.
func (r *Registry) Sections() []Section {
	var out []Section
	for _, s := range r.specs {
		if s.Section != "" || len(out) == 0 {
			out = append(out, Section{Title: strings.TrimSpace(s.Section)})
		}
		last := &out[len(out)-1]
		last.Specs = append(last.Specs, s)
	}
	return out
}

// SectionOf returns the effective section title of the named parameter.
func (r *Registry) SectionOf(name string) string {
	i, ok := r.index[name]
	if !ok {
		return ""
	}
	for j := i; j >= 0; j-- {
		if r.specs[j].Section != "" {
			return strings.TrimSpace(r.specs[j].Section)
		}
	}
	return ""
}

// Required returns the names of mandatory parameters in declaration order.
func (r *Registry) Required() []string {
	var names []string
	for _, s := range r.specs {
		if s.Required {
			names = append(names, s.Name)
		}
	}
	return names
}

// Defaults returns the non-absent defaults keyed by parameter name.
func (r *Registry) Defaults() Values {
	out := make(Values)
	for _, s := range r.specs {
		if s.Default.IsSet() {
			out[s.Name] = s.Default
		}
	}
	return out
}
