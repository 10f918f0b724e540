package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/ignite/fibre-signup/internal/notify"
	"github.com/ignite/fibre-signup/internal/repository/postgres"
)

// flexString decodes either a JSON string or a JSON number into a string.
// The front-end sends site_id and unit_number as whichever type the select
// widget produced.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// signupRequest is the incoming signup payload. website is the honeypot
// field; humans never see it.
type signupRequest struct {
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	SiteID         flexString `json:"site_id"`
	UnitNumber     flexString `json:"unit_number"`
	Package        string     `json:"package"`
	ActivationType string     `json:"activation_type"`
	SignupType     string     `json:"signup_type"`
	ActivationDate string     `json:"activation_date"`
	Notes          string     `json:"notes"`
	CompanyName    string     `json:"company_name"`
	VATRegNo       string     `json:"vat_reg_no"`
	Website        string     `json:"website"`
	FormLoadedAt   string     `json:"form_loaded_at"`
}

// requiredFields lists mandatory signup fields in the order they are
// reported back when missing.
var requiredFields = []string{
	"first_name",
	"last_name",
	"email",
	"phone",
	"site_id",
	"unit_number",
	"package",
	"activation_type",
	"signup_type",
}

func (req *signupRequest) missingFields() []string {
	values := map[string]string{
		"first_name":      req.FirstName,
		"last_name":       req.LastName,
		"email":           req.Email,
		"phone":           req.Phone,
		"site_id":         string(req.SiteID),
		"unit_number":     string(req.UnitNumber),
		"package":         req.Package,
		"activation_type": req.ActivationType,
		"signup_type":     req.SignupType,
	}
	var missing []string
	for _, f := range requiredFields {
		if values[f] == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// GetSites returns all sites, ordered by name.
//
//	GET /api/sites
func (h *Handlers) GetSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.repo.ListSites(r.Context())
	if err != nil {
		log.Printf("[API] Failed to list sites: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, sites)
}

// GetUnits returns the inactive (signup-eligible) unit numbers for a site.
//
//	GET /api/units?site_id=
func (h *Handlers) GetUnits(w http.ResponseWriter, r *http.Request) {
	siteIDParam := r.URL.Query().Get("site_id")
	if siteIDParam == "" {
		respondError(w, http.StatusBadRequest, "site_id parameter is required")
		return
	}

	siteID, err := strconv.Atoi(siteIDParam)
	if err != nil {
		respondError(w, http.StatusBadRequest, "site_id must be an integer")
		return
	}

	units, err := h.repo.ListInactiveUnits(r.Context(), siteID)
	if err != nil {
		log.Printf("[API] Failed to list units for site %d: %v", siteID, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, units)
}

// Signup validates a submission and relays it to support. Validation
// short-circuits on the first failure; the notification send is isolated
// so a mail outage never fails an accepted signup.
//
//	POST /api/signup
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	// An empty object, null, or a non-object body all count as "no payload"
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	var req signupRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	// Bot heuristics run before any validation so automated probes learn
	// nothing about field rules. The response is a generic 400; the real
	// reason goes to the blocked-attempts log.
	if isBot, reason := h.bots.Check(req.Website, req.FormLoadedAt); isBot {
		h.blockedLog.Printf("INFO: Blocked bot attempt: %s, IP=%s, data=%s", reason, r.RemoteAddr, string(body))
		respondError(w, http.StatusBadRequest, "Blocked suspicious submission")
		return
	}

	if req.SignupType == "company" && req.CompanyName == "" {
		respondError(w, http.StatusBadRequest, "Company name and VAT Reg No are required when signing up as a company")
		return
	}

	if missing := req.missingFields(); len(missing) > 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Missing required fields",
			"fields": missing,
		})
		return
	}

	email, err := h.emails.Validate(ctx, req.Email)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	activation := req.ActivationDate
	if req.ActivationType == "Scheduled" && activation == "" {
		respondError(w, http.StatusBadRequest, "activation_date is required when activation_type is Scheduled")
		return
	}
	if req.ActivationType == "ASAP" {
		// Any supplied date is ignored for ASAP activations
		activation = "ASAP"
	}

	siteID, err := strconv.Atoi(string(req.SiteID))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid site_id")
		return
	}
	siteName, err := h.repo.GetSiteName(ctx, siteID)
	if err != nil {
		if errors.Is(err, postgres.ErrSiteNotFound) {
			respondError(w, http.StatusBadRequest, "Invalid site_id")
			return
		}
		log.Printf("[API] Failed to resolve site %d: %v", siteID, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	payload := notify.Notification{
		Name:        req.FirstName + " " + req.LastName,
		Email:       email,
		Phone:       req.Phone,
		Site:        siteName,
		Unit:        string(req.UnitNumber),
		Package:     req.Package,
		Activation:  activation,
		Notes:       req.Notes,
		SignupType:  req.SignupType,
		CompanyName: req.CompanyName,
		VATRegNo:    req.VATRegNo,
	}

	if err := h.notifier.Send(ctx, payload); err != nil {
		// Best-effort: the signup stands even if support mail fails
		log.Printf("[API] Failed to send support email: %v", err)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"message": "Signup received",
		"data":    payload,
	})
}
