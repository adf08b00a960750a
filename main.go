package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"rabilling/collections"
	"rabilling/config"
	"rabilling/handlers"
	"rabilling/services"
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	for _, problem := range cfg.Validate() {
		log.Printf("Warning: config %s", problem)
	}

	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: cfg.DataDir,
	})

	app.RootCmd.AddCommand(newAuditCommand(app))
	app.RootCmd.AddCommand(newSeedCommand(app))

	// Record hooks guard every write path, not only the HTTP routes.
	collections.RegisterHooks(app)

	// Create collections, link legacy lines and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if _, err := collections.MigrateLegacyItemRefs(app, ledgerResolver(app)); err != nil {
			log.Printf("Warning: legacy item reference migration failed: %v", err)
		}
		if cfg.SeedDemo {
			if err := collections.Seed(app); err != nil {
				log.Printf("Warning: seed data failed: %v", err)
			}
		}
		return se.Next()
	})

	company := cfg.CompanyInfo()
	// One guard per process so every entry point shares the same commit path.
	guard := services.NewCommitGuard(app, cfg.GuardSettings())

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Projects ─────────────────────────────────────────────
		se.Router.GET("/projects", handlers.HandleProjectList(app))
		se.Router.POST("/projects", handlers.HandleProjectSave(app))

		// ── Project-scoped billing routes ───────────────────────
		project := se.Router.Group("/projects/{projectId}")
		project.BindFunc(handlers.ProjectMiddleware(app))

		// Invoices
		project.POST("/invoices", handlers.HandleInvoiceCreate(app, guard))
		project.POST("/invoices/enhanced", handlers.HandleEnhancedInvoiceCreate(app, guard))
		project.POST("/invoices/validate", handlers.HandleInvoiceValidate(app, guard))
		project.GET("/invoices", handlers.HandleInvoiceList(app))
		project.GET("/invoices/{id}/pdf", handlers.HandleInvoiceExportPDF(app, company))

		// Balances and reporting
		project.GET("/balances", handlers.HandleBalances(app))
		project.GET("/balances/export/excel", handlers.HandleBalanceExportExcel(app, company))
		project.GET("/balances/export/pdf", handlers.HandleBalanceExportPDF(app, company))
		project.GET("/items/{ref}/remaining", handlers.HandleItemRemaining(app))
		project.GET("/audit", handlers.HandleAudit(app))

		// BOQ upload
		project.GET("/boq/template", handlers.HandleBOQTemplate())
		project.POST("/boq/import", handlers.HandleBOQImport(app))

		// Redirect home to projects list
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/projects")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// ledgerResolver resolves legacy references the same way invoice lines are
// resolved at commit time.
func ledgerResolver(app core.App) collections.ItemResolver {
	ledger := services.NewLedger(app)
	return func(projectID, ref string) (string, error) {
		item, err := ledger.GetItem(projectID, ref)
		if err != nil {
			return "", err
		}
		return item.ID, nil
	}
}
