// rbaciam serves the team access matrix: who gets what, and how.
package main

import (
	"os"

	"github.com/anahernandes-vtex/rbaciam-novo/cmd/rbaciam/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
