package cmd

import (
	"fmt"

	"github.com/aaronwald/rawdash/internal/render"
	"github.com/aaronwald/rawdash/internal/types"
	"github.com/spf13/cobra"
)

var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "List validation checks",
	Long: `List validation checks with pass/warn/fail counts.

With --strict the command exits non-zero when any check failed, which makes it
usable as a CI gate.`,
	Args: cobra.NoArgs,
	RunE: runChecks,
}

// Flags
var (
	checksStatus []string
	checksStrict bool
)

func init() {
	checksCmd.Flags().StringSliceVar(&checksStatus, "status", nil, "Filter by status: "+types.CheckStatusNames()+" (repeatable)")
	checksCmd.Flags().BoolVar(&checksStrict, "strict", false, "Exit with an error if any check failed")
}

// ChecksCommand returns the checks command for registration
func ChecksCommand() *cobra.Command {
	return checksCmd
}

func parseStatusFilter(values []string) ([]types.CheckStatus, error) {
	var statuses []types.CheckStatus
	for _, v := range values {
		s, ok := types.LookupCheckStatus(v)
		if !ok {
			return nil, fmt.Errorf("invalid status '%s' (expected one of: %s)", v, types.CheckStatusNames())
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

func runChecks(cmd *cobra.Command, args []string) error {
	statuses, err := parseStatusFilter(checksStatus)
	if err != nil {
		return err
	}

	s, err := loadDashboard(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	render.Checks(out, types.FilterChecks(s.Checks(), statuses...))
	fmt.Fprintln(out)

	counts := s.Counts
	render.Counts(out, counts)

	if checksStrict && counts.Fail > 0 {
		return fmt.Errorf("%d of %d checks failed", counts.Fail, counts.Total)
	}
	return nil
}
