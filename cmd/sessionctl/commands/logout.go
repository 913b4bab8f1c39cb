package commands

import (
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout <token>",
	Short: "Invalidate a session token",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	name, err := client().Do("LOGOUT", args[0])
	if err != nil {
		return err
	}
	printSuccess("logged out " + name)
	return nil
}
