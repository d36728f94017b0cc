package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aaronwald/rawdash/internal/dashboard"
	"github.com/aaronwald/rawdash/internal/render"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the dataset inventory summary",
	Long:  `Fetch the dashboard summary and print totals, check aggregates, files and checks.`,
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List files in the dataset inventory",
	Args:  cobra.NoArgs,
	RunE:  runFiles,
}

// Flags
var (
	summaryOutput string
)

func init() {
	summaryCmd.Flags().StringVar(&summaryOutput, "output", "", "Output format: text, json")
}

// SummaryCommand returns the summary command for registration
func SummaryCommand() *cobra.Command {
	return summaryCmd
}

// FilesCommand returns the files command for registration
func FilesCommand() *cobra.Command {
	return filesCmd
}

// loadDashboard runs one summary refresh through the dashboard core and returns its state
func loadDashboard(cmd *cobra.Command) (dashboard.State, error) {
	cfg, err := loadSettings()
	if err != nil {
		return dashboard.State{}, err
	}
	c, err := newAPIClient(cfg)
	if err != nil {
		return dashboard.State{}, err
	}

	d := dashboard.New(c, dashboard.Options{
		RowLimit:  cfg.RowLimit,
		Logger:    newLogger(cmd.ErrOrStderr()),
		NoPreview: true,
	})
	defer d.Close()

	if err := d.Refresh(commandContext(cmd)); err != nil {
		return dashboard.State{}, fmt.Errorf("failed to load summary: %s", d.Snapshot().Error)
	}
	return d.Snapshot(), nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	asJSON, err := validateOutput(summaryOutput)
	if err != nil {
		return err
	}

	s, err := loadDashboard(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s.Summary)
	}

	render.Stats(out, s.Summary, time.Now())
	fmt.Fprintln(out)
	render.Files(out, s.Files(), "")
	fmt.Fprintln(out)
	render.Checks(out, s.Checks())
	return nil
}

func runFiles(cmd *cobra.Command, args []string) error {
	s, err := loadDashboard(cmd)
	if err != nil {
		return err
	}
	render.Files(cmd.OutOrStdout(), s.Files(), "")
	return nil
}
