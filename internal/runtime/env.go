// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// InvalidEnvNameError is returned when an Invocation carries an environment
// entry that cannot be exported to a process.
type InvalidEnvNameError struct {
	Name string
}

// Error implements the error interface.
func (e *InvalidEnvNameError) Error() string {
	return fmt.Sprintf("invalid environment variable name %q", e.Name)
}

// Unwrap returns ErrInvalidEnvName for errors.Is() compatibility.
func (e *InvalidEnvNameError) Unwrap() error { return ErrInvalidEnvName }

// EnvToSlice converts an environment map to KEY=VALUE entries sorted by key.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		result = append(result, k+"="+env[k])
	}
	return result
}

// OverlayEnv returns environ with every entry of overlay applied. Existing
// entries with the same name are replaced in place so the child process sees
// exactly one value per name; new names are appended in sorted order.
func OverlayEnv(environ []string, overlay map[string]string) []string {
	result := make([]string, 0, len(environ)+len(overlay))
	applied := make(map[string]bool, len(overlay))
	for _, entry := range environ {
		name, _, _ := strings.Cut(entry, "=")
		if v, ok := overlay[name]; ok {
			if applied[name] {
				continue
			}
			applied[name] = true
			result = append(result, name+"="+v)
			continue
		}
		result = append(result, entry)
	}
	for _, k := range slices.Sorted(maps.Keys(overlay)) {
		if !applied[k] {
			result = append(result, k+"="+overlay[k])
		}
	}
	return result
}
