package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/pocketbase/core"
)

// FindProject loads a project record. A missing row is ErrProjectNotFound;
// any other failure is returned wrapped so it surfaces as an internal error.
func FindProject(app core.App, projectID string) (*core.Record, error) {
	rec, err := app.FindRecordById("projects", projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}
	return rec, nil
}
