package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/sanjeevceligo/rollout-insights/pkg/client"
	"github.com/spf13/cobra"
)

// resolveFlags registers the shared release/version/cutoff flags.
func resolveFlags(cmd *cobra.Command, params *client.ResolveParams) {
	cmd.Flags().StringVar(&params.Release, "release", "", "target release (server default when empty)")
	cmd.Flags().StringVar(&params.Version, "version", "", "target version (server default when empty)")
	cmd.Flags().StringVar(&params.Cutoff, "cutoff", "", "audit cutoff date, YYYY-MM-DD")
}

func newPhasesCmd() *cobra.Command {
	var params client.ResolveParams
	var phaseFilter string

	cmd := &cobra.Command{
		Use:   "phases",
		Short: "Resolve per-user release phases",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			report, err := apiClient.Rollout().Phases(ctx, params)
			if err != nil {
				return fmt.Errorf("failed to resolve phases: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(report)
			}

			t := NewTable("USER", "EMAIL", "PHASE", "REGION", "TIER", "VERIFIED")
			for _, a := range report.PerUser {
				if phaseFilter != "" && a.Phase != phaseFilter {
					continue
				}
				t.AddRow(
					a.UserID,
					truncate(a.Email, 36),
					formatPhase(a.Phase),
					a.Region,
					a.Tier,
					strconv.FormatBool(a.Verified),
				)
			}
			t.Render()

			if len(report.Errors) > 0 {
				fmt.Printf("\n%d user(s) excluded:\n", len(report.Errors))
				for _, e := range report.Errors {
					fmt.Printf("  %s: %s\n", e.UserID, e.Reason)
				}
			}
			for _, w := range report.Warnings {
				fmt.Println("warning:", w)
			}
			return nil
		},
	}

	resolveFlags(cmd, &params)
	cmd.Flags().StringVar(&phaseFilter, "phase", "", "only show users in this phase")

	return cmd
}

func newSummaryCmd() *cobra.Command {
	var params client.ResolveParams

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show phase distribution summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			summary, err := apiClient.Rollout().Summary(ctx, params)
			if err != nil {
				return fmt.Errorf("failed to get summary: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(summary)
			}

			phases := make([]string, 0, len(summary.ByPhase))
			for p := range summary.ByPhase {
				phases = append(phases, p)
			}
			sort.Strings(phases)

			t := NewTable("PHASE", "COUNT")
			for _, p := range phases {
				t.AddRow(formatPhase(p), strconv.Itoa(summary.ByPhase[p]))
			}
			t.Render()

			fmt.Println()
			rt := NewTable("PHASE", "REGION", "COUNT")
			for _, c := range summary.ByPhaseRegion {
				rt.AddRow(formatPhase(c.Phase), c.Region, strconv.Itoa(c.Count))
			}
			rt.Render()

			fmt.Printf("\nVerified: %d  Unverified: %d  Total: %d\n",
				summary.Verified, summary.Unverified, summary.Total)
			return nil
		},
	}

	resolveFlags(cmd, &params)
	return cmd
}

func newDriftCmd() *cobra.Command {
	var params client.ResolveParams

	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Show computed-vs-audited phase drift",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			drift, err := apiClient.Rollout().Drift(ctx, params)
			if err != nil {
				return fmt.Errorf("failed to get drift report: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(drift)
			}

			if len(drift.Drift) == 0 {
				fmt.Println("No drift detected")
			} else {
				t := NewTable("USER", "RESOLVED", "AUDITED", "AUDIT TIME")
				for _, d := range drift.Drift {
					t.AddRow(
						d.UserID,
						formatPhase(d.ResolvedPhase),
						formatPhase(d.AuditedPhase),
						d.AuditTime.Format("2006-01-02 15:04:05"),
					)
				}
				t.Render()
			}

			if len(drift.NoRecentAudit) > 0 {
				fmt.Printf("\n%d user(s) without a recent audit record:\n", len(drift.NoRecentAudit))
				for _, uid := range drift.NoRecentAudit {
					fmt.Println("  " + uid)
				}
			}
			return nil
		},
	}

	resolveFlags(cmd, &params)
	return cmd
}

func newAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <user-id>",
		Short: "Show the audit trail for one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			records, err := apiClient.Rollout().UserAudit(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get audit trail: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(records)
			}

			t := NewTable("TIME", "PHASE", "RELEASE")
			for _, rec := range records {
				t.AddRow(
					rec.Time.Format("2006-01-02 15:04:05"),
					formatPhase(rec.Phase),
					rec.ReleaseVersion,
				)
			}
			t.Render()
			return nil
		},
	}
}
