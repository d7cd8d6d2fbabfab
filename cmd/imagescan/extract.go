package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"photobooth/internal/imagegen"
	"photobooth/internal/providers/genai"
	"photobooth/internal/providers/stability"
)

var (
	extractProvider string
	extractFull     bool
)

var scans = map[string]imagegen.Scan{
	"predict":   genai.PredictionScan,
	"edit":      genai.EditScan,
	"stability": stability.ArtifactScan,
}

var extractCmd = &cobra.Command{
	Use:   "extract <response.json>",
	Short: "List the images the service would return for a response",
	Long: `Run root selection, extraction and sanitizing over a saved provider
response and print the resulting images.

Examples:
  imagescan extract predict.json
  imagescan extract --provider edit gemini.json
  curl ... | imagescan extract --provider stability -`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var previewCmd = &cobra.Command{
	Use:   "preview <response.json>",
	Short: "Print the bounded preview attached to empty-result errors",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	rootCmd.AddCommand(extractCmd, previewCmd)

	extractCmd.Flags().StringVar(&extractProvider, "provider", "predict", "Response shape: predict, edit, stability")
	extractCmd.Flags().BoolVar(&extractFull, "full", false, "Print whole base64 payloads instead of a summary")
}

func runExtract(cmd *cobra.Command, args []string) error {
	scan, ok := scans[extractProvider]
	if !ok {
		return fmt.Errorf("unsupported provider: %s (use 'predict', 'edit' or 'stability')", extractProvider)
	}
	resp, err := readResponse(cmd, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	images := scan.Collect(resp)
	fmt.Fprintf(out, "%d image(s)\n", len(images))
	for i, img := range images {
		if extractFull {
			fmt.Fprintf(out, "[%d] %s\n", i, img)
			continue
		}
		fmt.Fprintf(out, "[%d] %d chars %s\n", i, len(img), abbreviate(img, 24))
	}
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	resp, err := readResponse(cmd, args[0])
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(imagegen.Preview(resp), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
