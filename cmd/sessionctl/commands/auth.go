package commands

import (
	"github.com/spf13/cobra"
)

var authPassword string

var authCmd = &cobra.Command{
	Use:   "auth <name> [password]",
	Short: "Authenticate a user without creating a session",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAuth,
}

func init() {
	authCmd.Flags().StringVarP(&authPassword, "password", "p", "", "password (prompted if omitted)")
}

func runAuth(cmd *cobra.Command, args []string) error {
	name := args[0]
	pw := authPassword
	if len(args) == 2 {
		pw = args[1]
	}
	pw, err := resolvePassword(pw, "Password")
	if err != nil {
		return err
	}

	if _, err := client().Do("AUTH", name, pw); err != nil {
		return err
	}
	printSuccess("authentication succeeded")
	return nil
}
