// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/lfqrun/lfqrun/cmd/lfqrun"

func main() {
	cmd.Execute()
}
