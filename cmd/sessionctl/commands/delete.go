package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kappalabs/sessiond/internal/cli/prompt"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a user account",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete user %q?", name), deleteForce)
	if err != nil {
		if prompt.IsAborted(err) {
			fmt.Println("Aborted.")
			return nil
		}
		return err
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if _, err := client().Do("DELETE", name); err != nil {
		return err
	}
	printSuccess("user " + name + " deleted")
	return nil
}
