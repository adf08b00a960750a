package main

import (
	"fmt"
	"io"

	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"rabilling/collections"
	"rabilling/services"
)

func newAuditCommand(app core.App) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Compare BOQ billed quantities with committed invoice lines",
		Long: "Re-sums committed invoice lines per BOQ item and reports every item whose " +
			"billed quantity disagrees. Nothing is written. Exits non-zero when drift is found.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			collections.Setup(app)

			drifted, err := runAudit(app, projectID, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if drifted > 0 {
				return fmt.Errorf("drift found in %d project(s)", drifted)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "audit a single project id (default: all projects)")
	return cmd
}

func newSeedCommand(app core.App) *cobra.Command {
	return &cobra.Command{
		Use:          "seed-demo",
		Short:        "Create the demo project when no project exists",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			collections.Setup(app)
			return collections.Seed(app)
		},
	}
}

// runAudit writes one report block per project and returns how many
// projects have drift.
func runAudit(app core.App, projectID string, w io.Writer) (int, error) {
	var projects []*core.Record
	if projectID != "" {
		p, err := services.FindProject(app, projectID)
		if err != nil {
			return 0, fmt.Errorf("audit: %w", err)
		}
		projects = append(projects, p)
	} else {
		all, err := app.FindRecordsByFilter("projects", "", "name", 0, 0)
		if err != nil {
			return 0, fmt.Errorf("audit: could not query projects: %w", err)
		}
		projects = all
	}

	drifted := 0
	for _, p := range projects {
		drifts, err := services.AuditProject(app, p.Id)
		if err != nil {
			return drifted, fmt.Errorf("audit: project %s: %w", p.Id, err)
		}
		if len(drifts) == 0 {
			fmt.Fprintf(w, "%s (%s): ok\n", p.GetString("name"), p.Id)
			continue
		}

		drifted++
		fmt.Fprintf(w, "%s (%s): %d item(s) drifted\n", p.GetString("name"), p.Id, len(drifts))
		for _, d := range drifts {
			fmt.Fprintf(w, "  %-8s %-40s ledger=%s invoiced=%s diff=%s\n",
				d.ItemCode, d.Description,
				services.FormatQty(d.LedgerBilled), services.FormatQty(d.Invoiced), services.FormatQty(d.Difference))
		}
	}
	return drifted, nil
}
