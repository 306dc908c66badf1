package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/anshulm/replrun/internal/extract"
	"github.com/anshulm/replrun/internal/replicate"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Run the output text extractor on a JSON value",
	Long:  "Reads a JSON value from a file (or stdin when no file is given) and prints the text the extractor picks from it. Useful for checking what a saved prediction output would yield.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	value, err := extract.Decode(data)
	if err != nil {
		return err
	}

	text, ok := extract.Text(value)
	if !ok || text == "" {
		fmt.Println(renderOutcome(replicate.Outcome{
			Kind:   replicate.NoTextExtracted,
			Reason: "no text extracted",
			Body:   value.String(),
		}))
		os.Exit(1)
	}

	fmt.Println(text)
	return nil
}
