// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrProvisioning is the sentinel error wrapped by ProvisioningError.
	ErrProvisioning = errors.New("storage provisioning failed")
	// ErrMissingToken is returned when the execution token is not set.
	ErrMissingToken = errors.New("execution token is not set")
	// ErrMissingVolumeName is returned when the dispatcher response carries no name.
	ErrMissingVolumeName = errors.New("response has no volume name")
)

type (
	// Provisioner obtains a shared storage volume for one execution.
	Provisioner interface {
		// Provision requests a volume of gib GiB and returns its claim name.
		Provision(ctx context.Context, gib int) (*Volume, error)
	}

	// Volume is a provisioned shared storage volume.
	Volume struct {
		// Name is the volume claim name tasks mount.
		Name string
		// CapacityGiB is the requested capacity.
		CapacityGiB int
	}

	// ProvisioningError reports why a volume could not be obtained.
	ProvisioningError struct {
		// Endpoint is the dispatcher URL that was (or would have been) called.
		Endpoint string
		// StatusCode is the HTTP status, or 0 when no response was received.
		StatusCode int
		// Body is a truncated copy of a non-2xx response body.
		Body string
		// Err is the underlying cause.
		Err error
	}
)

// Error implements the error interface.
func (e *ProvisioningError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("storage provisioning failed: %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("storage provisioning failed: %s returned %d", e.Endpoint, e.StatusCode)
	default:
		return fmt.Sprintf("storage provisioning failed: %v", e.Err)
	}
}

// Unwrap returns ErrProvisioning and the underlying cause.
func (e *ProvisioningError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrProvisioning}
	}
	return []error{ErrProvisioning, e.Err}
}
