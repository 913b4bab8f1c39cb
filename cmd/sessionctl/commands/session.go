package commands

import (
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session <token>",
	Short: "Check whether a session token is still valid",
	Args:  cobra.ExactArgs(1),
	RunE:  runSession,
}

type userResult struct {
	Name string `json:"name" yaml:"name"`
}

func (u userResult) Headers() []string { return []string{"FIELD", "VALUE"} }
func (u userResult) Rows() [][]string  { return [][]string{{"Name", u.Name}} }

func runSession(cmd *cobra.Command, args []string) error {
	name, err := client().Do("SESSION", args[0])
	if err != nil {
		return err
	}
	result := userResult{Name: name}
	return printResource(result, result)
}
