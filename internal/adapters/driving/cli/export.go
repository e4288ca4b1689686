package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <public-id>",
	Short: "Export a document as Lottie JSON or a Telegram sticker",
	Long: `Export writes the animation of a stored document. Without --output the
payload goes to stdout.

Examples:
  glaximini export k3nqx -o intro.json
  glaximini export k3nqx --sticker -o intro.tgs`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var (
	exportOutput  string
	exportSticker bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportSticker, "sticker", false, "write a gzipped .tgs sticker instead of Lottie JSON")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	exports, release, err := exportsFor(settings)
	if err != nil {
		return err
	}
	defer release()

	ctx := cmd.Context()
	publicID := args[0]

	var data []byte
	if exportSticker {
		data, err = exports.Sticker(ctx, publicID)
	} else {
		data, err = exports.Export(ctx, publicID)
	}
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", publicID, err)
	}

	if exportOutput == "" || exportOutput == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(exportOutput, data, 0644); err != nil { //nolint:gosec // exports are meant to be shared
		return fmt.Errorf("writing %s: %w", exportOutput, err)
	}
	cmd.Printf("Wrote %d bytes to %s\n", len(data), exportOutput)
	return nil
}
