package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"photobooth/internal/imagegen"
)

var rootCmd = &cobra.Command{
	Use:           "imagescan",
	Short:         "Inspect saved image provider responses",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// readResponse loads and parses a saved response; "-" reads stdin.
func readResponse(cmd *cobra.Command, path string) (imagegen.Value, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return imagegen.Value{}, fmt.Errorf("failed to read response: %w", err)
	}
	v, err := imagegen.Parse(data)
	if err != nil {
		return imagegen.Value{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
