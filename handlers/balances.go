package handlers

import (
	"fmt"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"rabilling/services"
	"rabilling/templates"
)

type balancesResponse struct {
	ProjectID string                 `json:"project_id"`
	Items     []services.ItemBalance `json:"items"`
	Totals    services.BalanceTotals `json:"totals"`
}

// HandleBalances returns the project's balance table as JSON or, for HTMX
// requests, as the balance table fragment.
func HandleBalances(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		project, err := projectFromEvent(app, e)
		if err != nil {
			return writeBillingError(e, "balances", err)
		}

		rows, err := services.NewReconciler(app).Balances(project.Id)
		if err != nil {
			return writeBillingError(e, "balances", err)
		}
		totals := services.CalcBalanceTotals(rows)

		if isHTMX(e) {
			data := templates.BalanceTableData{
				ProjectID:      project.Id,
				ProjectName:    project.GetString("name"),
				ContractValue:  services.FormatINR(totals.ContractValue),
				BilledValue:    services.FormatINR(totals.BilledValue),
				RemainingValue: services.FormatINR(totals.RemainingValue),
			}
			for _, r := range rows {
				data.Rows = append(data.Rows, templates.BalanceRow{
					ItemCode:    r.ItemCode,
					Description: r.Description,
					Unit:        r.Unit,
					Original:    services.FormatQty(r.Original),
					Billed:      services.FormatQty(r.Billed),
					Remaining:   services.FormatQty(r.Remaining),
					Percent:     fmt.Sprintf("%.2f%%", r.PercentBilled),
					Closed:      services.IsFullyBilled(r.Remaining),
				})
			}
			return templates.BalanceTable(data).Render(e.Request.Context(), e.Response)
		}

		return e.JSON(http.StatusOK, balancesResponse{ProjectID: project.Id, Items: rows, Totals: totals})
	}
}

// HandleItemRemaining answers GET /projects/{projectId}/items/{ref}/remaining.
// ref is a record id, an item code or a description.
func HandleItemRemaining(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		project, err := projectFromEvent(app, e)
		if err != nil {
			return writeBillingError(e, "item_remaining", err)
		}

		ref := e.Request.PathValue("ref")
		remaining, err := services.NewReconciler(app).Remaining(project.Id, ref)
		if err != nil {
			return writeBillingError(e, "item_remaining", err)
		}
		return e.JSON(http.StatusOK, map[string]any{
			"item_ref":  ref,
			"remaining": remaining,
		})
	}
}

// HandleAudit compares ledger balances with committed invoice lines. Read-only.
func HandleAudit(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		project, err := projectFromEvent(app, e)
		if err != nil {
			return writeBillingError(e, "audit", err)
		}

		drifts, err := services.AuditProject(app, project.Id)
		if err != nil {
			return writeBillingError(e, "audit", err)
		}

		if isHTMX(e) {
			rows := make([]templates.DriftRow, 0, len(drifts))
			for _, d := range drifts {
				rows = append(rows, templates.DriftRow{
					ItemCode:     d.ItemCode,
					Description:  d.Description,
					LedgerBilled: services.FormatQty(d.LedgerBilled),
					Invoiced:     services.FormatQty(d.Invoiced),
					Difference:   services.FormatQty(d.Difference),
				})
			}
			return templates.DriftTable(rows).Render(e.Request.Context(), e.Response)
		}
		return e.JSON(http.StatusOK, map[string]any{
			"project_id": project.Id,
			"consistent": len(drifts) == 0,
			"drifts":     drifts,
		})
	}
}
