package handlers

import (
	"github.com/pocketbase/pocketbase/core"

	"rabilling/services"
)

const projectStoreKey = "billingProject"

// ProjectMiddleware loads the {projectId} path parameter once per request and
// rejects unknown projects with the ProjectNotFound envelope.
func ProjectMiddleware(app core.App) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if projectID == "" {
			return e.Next()
		}
		rec, err := services.FindProject(app, projectID)
		if err != nil {
			return writeBillingError(e, "middleware", err)
		}
		e.Set(projectStoreKey, rec)
		return e.Next()
	}
}

// projectFromEvent returns the project stored by ProjectMiddleware, loading
// it when the handler runs without the middleware.
func projectFromEvent(app core.App, e *core.RequestEvent) (*core.Record, error) {
	if rec, ok := e.Get(projectStoreKey).(*core.Record); ok {
		return rec, nil
	}
	rec, err := services.FindProject(app, e.Request.PathValue("projectId"))
	if err != nil {
		return nil, err
	}
	return rec, nil
}
