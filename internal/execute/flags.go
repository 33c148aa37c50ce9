// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"errors"
	"strings"

	"github.com/lfqrun/lfqrun/pkg/params"
)

// FlagPrefix precedes every parameter name on the pipeline command line.
const FlagPrefix = "--"

// Translate renders one parameter as pipeline flags: nothing when the value
// is absent, otherwise the flag and its value token.
func Translate(spec params.Spec, value params.Value) []string {
	if !value.IsSet() {
		return nil
	}
	return []string{FlagPrefix + spec.Name, value.Token()}
}

// ResolveValues applies registry defaults to the supplied values and checks
// them. An explicit value wins over the default; a parameter with neither is
// absent. Values for undeclared names, values of the wrong kind and
// mandatory parameters without a non-empty value are reported together as
// *ConfigurationError entries.
func ResolveValues(reg *params.Registry, values params.Values) (params.Values, error) {
	var errs []error
	for _, name := range values.Names() {
		if _, ok := reg.Lookup(name); !ok {
			errs = append(errs, &ConfigurationError{Param: name, Err: ErrUnknownParameter})
		}
	}

	defaults := reg.Defaults()
	resolved := make(params.Values, reg.Len())
	for _, spec := range reg.Specs() {
		v := values.Get(spec.Name)
		if !v.IsSet() {
			v = defaults.Get(spec.Name)
		}
		v, err := spec.Coerce(v)
		if err != nil {
			errs = append(errs, &ConfigurationError{Param: spec.Name, Err: err})
			continue
		}
		if spec.Required && strings.TrimSpace(v.Token()) == "" {
			errs = append(errs, &ConfigurationError{Param: spec.Name, Err: ErrMissingParameter})
			continue
		}
		resolved.Set(spec.Name, v)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return resolved, nil
}

// BuildArgs resolves values against the registry and translates every
// parameter in declaration order into one flat token list.
func BuildArgs(reg *params.Registry, values params.Values) ([]string, error) {
	resolved, err := ResolveValues(reg, values)
	if err != nil {
		return nil, err
	}
	args := make([]string, 0, 2*len(resolved))
	for _, spec := range reg.Specs() {
		args = append(args, Translate(spec, resolved.Get(spec.Name))...)
	}
	return args, nil
}
