// Command sessionctl is a CLI client for sessiond's Unix-domain line
// protocol.
package main

import (
	"fmt"
	"os"

	"github.com/kappalabs/sessiond/cmd/sessionctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
