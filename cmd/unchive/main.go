package main

import (
	"fmt"
	"os"

	"github.com/GriffinCanCode/unchive/internal/cli"
)

// version is set via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
