package main

import (
	"fmt"
	"os"

	"github.com/aaronwald/rawdash/internal/cmd"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "rawdash",
	Short:         "Raw dataset dashboard client",
	Long:          `rawdash shows the dataset inventory, validation checks and file previews served by a raw dashboard backend.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cmd.AddGlobalFlags(rootCmd)

	// Register commands
	rootCmd.AddCommand(cmd.SummaryCommand())
	rootCmd.AddCommand(cmd.FilesCommand())
	rootCmd.AddCommand(cmd.ChecksCommand())
	rootCmd.AddCommand(cmd.PreviewCommand())
	rootCmd.AddCommand(cmd.WatchCommand())
	rootCmd.AddCommand(cmd.ConfigCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
