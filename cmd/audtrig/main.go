// SPDX-License-Identifier: EPL-2.0

// Command audtrig plays and renders multi-stream audio triggers.
package main

import (
	"context"
	"os"

	"github.com/ik5/audtrig/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
