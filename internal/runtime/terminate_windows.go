// SPDX-License-Identifier: MPL-2.0

//go:build windows

package runtime

import "os"

// terminate kills p. Windows cannot deliver SIGTERM to another process.
func terminate(p *os.Process) error {
	return p.Kill()
}
