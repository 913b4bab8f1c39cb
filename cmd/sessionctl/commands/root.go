// Package commands implements sessionctl's CLI surface.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/kappalabs/sessiond/pkg/sessionclient"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	flagSocket string
	flagOutput string
)

var rootCmd = &cobra.Command{
	Use:   "sessionctl",
	Short: "sessionctl - sessiond command-line client",
	Long: `sessionctl dials sessiond's Unix-domain socket and issues one of its
protocol commands: auth, login, session, logout, create, update, delete, save.

Use "sessionctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSocket, "socket", "/var/run/sessiond.sock", "path to sessiond's Unix-domain socket")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "table", "output format: table, json, yaml")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func client() *sessionclient.Client {
	return sessionclient.New(flagSocket)
}
