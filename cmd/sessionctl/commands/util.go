package commands

import (
	"fmt"
	"os"

	"github.com/kappalabs/sessiond/internal/cli/output"
	"github.com/kappalabs/sessiond/internal/cli/prompt"
)

func outputFormat() (output.Format, error) {
	return output.ParseFormat(flagOutput)
}

func printResource(data any, tableRenderer output.TableRenderer) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, data)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, data)
	default:
		return output.PrintTable(os.Stdout, tableRenderer)
	}
}

func printSuccess(msg string) {
	format, err := outputFormat()
	if err != nil || format != output.FormatTable {
		return
	}
	output.NewPrinter(os.Stdout, format, true).Success(msg)
}

// resolvePassword returns pw if non-empty, otherwise prompts for one
// interactively with masking.
func resolvePassword(pw, label string) (string, error) {
	if pw != "" {
		return pw, nil
	}
	entered, err := prompt.Password(label)
	if err != nil {
		if prompt.IsAborted(err) {
			return "", fmt.Errorf("aborted")
		}
		return "", err
	}
	return entered, nil
}
