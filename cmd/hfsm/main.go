// Command hfsm inspects, renders and simulates hierarchical state trees
// declared in YAML.
package main

import (
	"os"

	"github.com/anggasct/hfsm/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
