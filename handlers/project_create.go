package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"rabilling/services"
)

var ProjectStatusOptions = []string{"active", "closed"}

type projectRequest struct {
	Name            string `json:"name"`
	ClientName      string `json:"client_name"`
	ClientGSTIN     string `json:"client_gstin"`
	ReferenceNumber string `json:"reference_number"`
	StateCode       string `json:"state_code"`
	Status          string `json:"status"`
}

func parseProjectRequest(e *core.RequestEvent) (projectRequest, error) {
	var req projectRequest
	if isJSON(e) {
		if err := json.NewDecoder(e.Request.Body).Decode(&req); err != nil {
			return req, errMalformedBody
		}
	} else {
		if err := e.Request.ParseForm(); err != nil {
			return req, errMalformedBody
		}
		req = projectRequest{
			Name:            e.Request.FormValue("name"),
			ClientName:      e.Request.FormValue("client_name"),
			ClientGSTIN:     e.Request.FormValue("client_gstin"),
			ReferenceNumber: e.Request.FormValue("reference_number"),
			StateCode:       e.Request.FormValue("state_code"),
			Status:          e.Request.FormValue("status"),
		}
	}

	req.Name = strings.TrimSpace(req.Name)
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ClientGSTIN = strings.ToUpper(strings.TrimSpace(req.ClientGSTIN))
	req.ReferenceNumber = strings.TrimSpace(req.ReferenceNumber)
	req.StateCode = strings.TrimSpace(req.StateCode)
	req.Status = strings.TrimSpace(req.Status)
	return req, nil
}

// HandleProjectSave creates a project. The GST state code decides the tax
// mode of its invoices and is taken from the client GSTIN when not given.
func HandleProjectSave(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		req, err := parseProjectRequest(e)
		if err != nil {
			return badRequest(e, "Invalid form data")
		}

		errors := services.ValidatePartyFields(map[string]string{
			"gstin":      req.ClientGSTIN,
			"state_code": req.StateCode,
		})
		if msg, ok := errors["gstin"]; ok {
			errors["client_gstin"] = msg
			delete(errors, "gstin")
		}
		if req.Name == "" {
			errors["name"] = "Project name is required"
		}

		validStatus := false
		for _, s := range ProjectStatusOptions {
			if req.Status == s {
				validStatus = true
				break
			}
		}
		if !validStatus {
			req.Status = "active"
		}

		if req.Name != "" {
			existing, _ := app.FindRecordsByFilter(
				"projects",
				"name = {:name}",
				"", 1, 0,
				map[string]any{"name": req.Name},
			)
			if len(existing) > 0 {
				errors["name"] = "A project with this name already exists"
			}
		}

		if len(errors) > 0 {
			if isHTMX(e) {
				SetToast(e, ToastWarning, "Please fix the errors below")
			}
			return e.JSON(http.StatusBadRequest, map[string]any{
				"errorKind": "InvalidRequest",
				"message":   "Please fix the errors below",
				"fields":    errors,
			})
		}

		if req.StateCode == "" {
			req.StateCode = services.StateCodeFromGSTIN(req.ClientGSTIN)
		}

		projectsCol, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			log.Printf("project_create: could not find projects collection: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, genericErrorMessage)
		}

		record := core.NewRecord(projectsCol)
		record.Set("name", req.Name)
		record.Set("client_name", req.ClientName)
		record.Set("client_gstin", req.ClientGSTIN)
		record.Set("reference_number", req.ReferenceNumber)
		record.Set("state_code", req.StateCode)
		record.Set("status", req.Status)

		if err := app.Save(record); err != nil {
			log.Printf("project_create: could not save project: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, genericErrorMessage)
		}

		SetToast(e, ToastSuccess, "Project created successfully")

		if isHTMX(e) {
			e.Response.Header().Set("HX-Redirect", "/projects/"+record.Id+"/balances")
			return e.String(http.StatusOK, "")
		}
		return e.JSON(http.StatusCreated, map[string]any{
			"id":         record.Id,
			"name":       req.Name,
			"state_code": req.StateCode,
			"status":     req.Status,
		})
	}
}
