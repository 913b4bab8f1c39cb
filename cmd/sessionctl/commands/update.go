package commands

import (
	"github.com/spf13/cobra"
)

var updatePassword string

var updateCmd = &cobra.Command{
	Use:   "update <name> [password]",
	Short: "Change a user's password",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runUpdate,
}

func init() {
	updateCmd.Flags().StringVarP(&updatePassword, "password", "p", "", "new password (prompted if omitted)")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	name := args[0]
	pw := updatePassword
	if len(args) == 2 {
		pw = args[1]
	}
	pw, err := resolvePassword(pw, "New password")
	if err != nil {
		return err
	}

	if _, err := client().Do("UPDATE", name, pw); err != nil {
		return err
	}
	printSuccess("password updated for " + name)
	return nil
}
