// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/ndeet/unzipper/cmd/unzipper"

func main() {
	cmd.Execute()
}
