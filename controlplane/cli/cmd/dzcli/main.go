package main

import (
	"os"

	"github.com/dz-network/doublezero/controlplane/cli/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
