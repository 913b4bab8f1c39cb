// Command sessiond is the authentication/session daemon: it listens on a
// Unix-domain socket, dispatches its line protocol, and runs a periodic
// maintenance task that sweeps expired sessions and autosaves the overlay.
package main

import (
	"fmt"
	"os"

	"github.com/kappalabs/sessiond/cmd/sessiond/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
