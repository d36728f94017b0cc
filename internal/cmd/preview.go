package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/aaronwald/rawdash/internal/config"
	"github.com/aaronwald/rawdash/internal/dashboard"
	"github.com/aaronwald/rawdash/internal/render"
	"github.com/aaronwald/rawdash/internal/utils"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Preview the first rows of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

// Flags
var (
	previewRows   int
	previewOutput string
)

func init() {
	previewCmd.Flags().IntVar(&previewRows, "rows", 0, "Rows to fetch (default: row_limit from config)")
	previewCmd.Flags().StringVar(&previewOutput, "output", "", "Output format: text, json")
}

// PreviewCommand returns the preview command for registration
func PreviewCommand() *cobra.Command {
	return previewCmd
}

func runPreview(cmd *cobra.Command, args []string) error {
	fileName := args[0]
	if err := utils.ValidateFileName(fileName); err != nil {
		return err
	}
	asJSON, err := validateOutput(previewOutput)
	if err != nil {
		return err
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	rows := cfg.RowLimit
	if previewRows != 0 {
		if err := utils.ValidateRowLimit(previewRows, config.MaxRowLimit); err != nil {
			return err
		}
		rows = previewRows
	}

	c, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	d := dashboard.New(c, dashboard.Options{RowLimit: rows, Logger: newLogger(cmd.ErrOrStderr())})
	defer d.Close()

	d.Select(fileName)
	d.Wait()
	s := d.Snapshot()

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s.Preview); err != nil {
			return err
		}
	} else {
		render.Preview(out, s.PreviewFile, s.Preview, s.PreviewLoading)
	}

	if s.Preview != nil && s.Preview.IsError() {
		return fmt.Errorf("preview of %s failed", fileName)
	}
	return nil
}
