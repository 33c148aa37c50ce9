// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package runtime

import (
	"os"
	"syscall"
)

// terminate sends SIGTERM, the signal Nextflow traps for a clean shutdown.
func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
