// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/blastradius/blastradius/cmd/blastradius"

func main() {
	cmd.Execute()
}
