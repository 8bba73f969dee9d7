package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/types"
	"github.com/trm-lab/argus/pkg/usecase"
)

func issueIDOf(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "issueID"), 10, 64)
	if err != nil {
		return 0, goerr.Wrap(usecase.ErrInvalidInput, "invalid issue ID")
	}
	return id, nil
}

func (s *Server) openIssue(w http.ResponseWriter, r *http.Request) {
	vendorID, err := vendorIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		IssueType   string `json:"issueType"`
		Severity    string `json:"severity"`
		Priority    string `json:"priority"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed request body"))
		return
	}

	id := identityOf(r)
	issue, err := s.uc.Issue.OpenIssue(r.Context(), id.OrgID, usecase.OpenIssueInput{
		VendorID:    vendorID,
		Title:       req.Title,
		Description: req.Description,
		IssueType:   types.IssueType(req.IssueType),
		Severity:    types.IssueSeverity(req.Severity),
		Priority:    types.IssuePriority(req.Priority),
		ReportedBy:  id.UserID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toIssueResponse(issue))
}

func (s *Server) getIssue(w http.ResponseWriter, r *http.Request) {
	issueID, err := issueIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	issue, err := s.uc.Issue.GetIssue(r.Context(), identityOf(r).OrgID, issueID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toIssueResponse(issue))
}

func (s *Server) listVendorIssues(w http.ResponseWriter, r *http.Request) {
	vendorID, err := vendorIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	issues, err := s.uc.Issue.ListByVendor(r.Context(), identityOf(r).OrgID, vendorID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toIssueResponses(issues))
}

func (s *Server) updateCorrectiveActionPlan(w http.ResponseWriter, r *http.Request) {
	issueID, err := issueIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Plan       string    `json:"plan"`
		TargetDate time.Time `json:"targetDate"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed request body"))
		return
	}

	issue, err := s.uc.Issue.UpdateCorrectiveActionPlan(r.Context(), identityOf(r).OrgID, issueID, req.Plan, req.TargetDate)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toIssueResponse(issue))
}

func (s *Server) submitRemediation(w http.ResponseWriter, r *http.Request) {
	issueID, err := issueIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		EvidenceURL  string    `json:"evidenceUrl"`
		RemediatedAt time.Time `json:"remediatedAt"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed request body"))
		return
	}
	if req.RemediatedAt.IsZero() {
		req.RemediatedAt = time.Now().UTC()
	}

	issue, err := s.uc.Issue.SubmitRemediation(r.Context(), identityOf(r).OrgID, issueID, req.EvidenceURL, req.RemediatedAt)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toIssueResponse(issue))
}

func (s *Server) validateRemediation(w http.ResponseWriter, r *http.Request) {
	issueID, err := issueIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Approved bool `json:"approved"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed request body"))
		return
	}

	id := identityOf(r)
	issue, err := s.uc.Issue.ValidateRemediation(r.Context(), id.OrgID, issueID, req.Approved, id.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toIssueResponse(issue))
}

func (s *Server) acceptRisk(w http.ResponseWriter, r *http.Request) {
	issueID, err := issueIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Rationale string `json:"rationale"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed request body"))
		return
	}

	issue, err := s.uc.Issue.AcceptRisk(r.Context(), identityOf(r).OrgID, issueID, req.Rationale)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toIssueResponse(issue))
}

func (s *Server) closeIssue(w http.ResponseWriter, r *http.Request) {
	issueID, err := issueIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed request body"))
		return
	}

	issue, err := s.uc.Issue.CloseIssue(r.Context(), identityOf(r).OrgID, issueID, req.Notes)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toIssueResponse(issue))
}

func (s *Server) escalateIssue(w http.ResponseWriter, r *http.Request) {
	issueID, err := issueIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	id := identityOf(r)
	issue, err := s.uc.Issue.EscalateIssue(r.Context(), id.OrgID, issueID, id.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toIssueResponse(issue))
}

func (s *Server) listOverdueIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := s.uc.Issue.ListOverdue(r.Context(), identityOf(r).OrgID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toIssueResponses(issues))
}
