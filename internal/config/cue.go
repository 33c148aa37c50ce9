// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// maxConfigFileSize bounds the config file read before CUE compilation.
const maxConfigFileSize = 1 << 20

// checkFileSize rejects config files larger than maxSize.
func checkFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, len(data), maxSize)
	}
	return nil
}

// formatCUEError flattens a CUE error into "<file>: <path>: <message>" lines.
//
// Examples:
//   - config.cue: provision.storage_gib: invalid value 0 (out of bound >=1)
//   - config.cue: runtime.env[1].name: invalid value "1X"
func formatCUEError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrs := cueerrors.Errors(err)
	if len(cueErrs) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(cueErrs))
	for _, e := range cueErrs {
		pathStr := formatPath(cueerrors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path in the message.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}

		if pathStr != "" {
			lines = append(lines, pathStr+": "+msg)
		} else {
			lines = append(lines, msg)
		}
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// formatPath turns ["runtime", "env", "0", "name"] into "runtime.env[0].name".
func formatPath(path []string) string {
	var sb strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			sb.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(part)
	}
	return sb.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
