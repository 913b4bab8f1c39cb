package commands

import (
	"github.com/spf13/cobra"
)

var createPassword string

var createCmd = &cobra.Command{
	Use:   "create <name> [password]",
	Short: "Create a new user account",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createPassword, "password", "p", "", "password (prompted if omitted)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	name := args[0]
	pw := createPassword
	if len(args) == 2 {
		pw = args[1]
	}
	pw, err := resolvePassword(pw, "New password")
	if err != nil {
		return err
	}

	token, err := client().Do("CREATE", name, pw)
	if err != nil {
		return err
	}
	result := tokenResult{Token: token}
	return printResource(result, result)
}
