package commands

import (
	"github.com/spf13/cobra"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <name> [password]",
	Short: "Authenticate and mint a session token",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted if omitted)")
}

type tokenResult struct {
	Token string `json:"token" yaml:"token"`
}

func (t tokenResult) Headers() []string { return []string{"FIELD", "VALUE"} }
func (t tokenResult) Rows() [][]string  { return [][]string{{"Token", t.Token}} }

func runLogin(cmd *cobra.Command, args []string) error {
	name := args[0]
	pw := loginPassword
	if len(args) == 2 {
		pw = args[1]
	}
	pw, err := resolvePassword(pw, "Password")
	if err != nil {
		return err
	}

	token, err := client().Do("LOGIN", name, pw)
	if err != nil {
		return err
	}
	result := tokenResult{Token: token}
	return printResource(result, result)
}
