// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"context"
	"errors"
	"path"
	"strings"
)

var (
	// ErrInvalidConfig is returned when an object store Config fails validation.
	ErrInvalidConfig = errors.New("invalid object store config")
	// ErrEmptyLocation is returned when an upload has no destination.
	ErrEmptyLocation = errors.New("artifact location is empty")
)

// Uploader stores a local file at a remote location.
type Uploader interface {
	Upload(ctx context.Context, localPath, location string) error
}

// RemoteKey joins the location segments of an execution artifact with "/".
// Empty segments are dropped and duplicate slashes collapsed; the scheme
// separator of the prefix ("latch:///") is preserved.
func RemoteKey(prefix, pipeline, execution, file string) string {
	scheme, rest, hasScheme := strings.Cut(prefix, "://")
	if !hasScheme {
		rest = prefix
	}

	parts := make([]string, 0, 4)
	for _, p := range []string{rest, pipeline, execution, file} {
		if p = strings.Trim(p, "/"); p != "" {
			parts = append(parts, p)
		}
	}
	joined := path.Clean(strings.Join(parts, "/"))
	if !hasScheme {
		if strings.HasPrefix(prefix, "/") {
			return "/" + joined
		}
		return joined
	}
	// latch:///dir keeps its empty authority.
	if strings.HasPrefix(rest, "/") {
		return scheme + ":///" + joined
	}
	return scheme + "://" + joined
}

// ObjectKey maps a location onto a bucket- or directory-relative key by
// removing the scheme and leading slashes.
func ObjectKey(location string) string {
	if _, rest, ok := strings.Cut(location, "://"); ok {
		location = rest
	}
	return strings.TrimLeft(path.Clean("/"+location), "/")
}
