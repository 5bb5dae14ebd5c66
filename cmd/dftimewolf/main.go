// cmd/dftimewolf/main.go
package main

import (
	"fmt"
	"os"

	"github.com/hkhalifa/dftimewolf/cmd/dftimewolf/commands"
	"github.com/hkhalifa/dftimewolf/pkg/engine"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(engine.ExitCode(err))
	}
}
