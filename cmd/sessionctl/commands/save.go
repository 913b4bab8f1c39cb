package commands

import (
	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Force the daemon to persist its overlay to disk",
	Args:  cobra.NoArgs,
	RunE:  runSave,
}

func runSave(cmd *cobra.Command, args []string) error {
	if _, err := client().Do("SAVE"); err != nil {
		return err
	}
	printSuccess("save completed")
	return nil
}
