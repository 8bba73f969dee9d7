package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/model/config"
	"github.com/trm-lab/argus/pkg/domain/types"
	"github.com/trm-lab/argus/pkg/usecase"
)

func workflowIDOf(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "workflowID"), 10, 64)
	if err != nil {
		return 0, goerr.Wrap(usecase.ErrInvalidInput, "invalid workflow ID")
	}
	return id, nil
}

func (s *Server) createWorkflow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VendorID              int64  `json:"vendorId"`
		WorkflowType          string `json:"workflowType"`
		BusinessJustification string `json:"businessJustification"`
		RiskAssessmentSummary string `json:"riskAssessmentSummary"`
		ApprovalChain         []struct {
			ApproverRole   string `json:"approverRole"`
			ApproverUserID string `json:"approverUserId"`
			ApproverName   string `json:"approverName"`
		} `json:"approvalChain"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed request body"))
		return
	}

	chain := make([]config.ChainStep, 0, len(req.ApprovalChain))
	for _, step := range req.ApprovalChain {
		chain = append(chain, config.ChainStep{
			ApproverRole:   step.ApproverRole,
			ApproverUserID: step.ApproverUserID,
			ApproverName:   step.ApproverName,
		})
	}

	id := identityOf(r)
	workflow, err := s.uc.Approval.CreateWorkflow(r.Context(), id.OrgID, usecase.CreateWorkflowInput{
		VendorID:              req.VendorID,
		WorkflowType:          types.WorkflowType(req.WorkflowType),
		InitiatedBy:           id.UserID,
		BusinessJustification: req.BusinessJustification,
		RiskAssessmentSummary: req.RiskAssessmentSummary,
		Chain:                 chain,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toWorkflowResponse(workflow))
}

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	workflowID, err := workflowIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	workflow, err := s.uc.Approval.GetWorkflow(r.Context(), identityOf(r).OrgID, workflowID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toWorkflowResponse(workflow))
}

func (s *Server) submitDecision(w http.ResponseWriter, r *http.Request) {
	workflowID, err := workflowIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	stepOrder, err := strconv.Atoi(chi.URLParam(r, "stepOrder"))
	if err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid step order"))
		return
	}

	var req struct {
		Decision         string   `json:"decision"`
		Comments         string   `json:"comments"`
		Conditions       []string `json:"conditions"`
		DigitalSignature string   `json:"digitalSignature"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed request body"))
		return
	}

	id := identityOf(r)
	workflow, err := s.uc.Approval.SubmitDecision(r.Context(), id.OrgID, workflowID, stepOrder, usecase.DecisionInput{
		Decision:         types.Decision(req.Decision),
		DecidedBy:        id.UserID,
		Comments:         req.Comments,
		Conditions:       req.Conditions,
		DigitalSignature: req.DigitalSignature,
		IPAddress:        r.RemoteAddr,
		UserAgent:        r.UserAgent(),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toWorkflowResponse(workflow))
}

func (s *Server) cancelWorkflow(w http.ResponseWriter, r *http.Request) {
	workflowID, err := workflowIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed request body"))
		return
	}

	id := identityOf(r)
	workflow, err := s.uc.Approval.CancelWorkflow(r.Context(), id.OrgID, workflowID, id.UserID, req.Reason)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toWorkflowResponse(workflow))
}

func (s *Server) listPendingApprovals(w http.ResponseWriter, r *http.Request) {
	id := identityOf(r)
	pending, err := s.uc.Approval.ListPendingApprovals(r.Context(), id.OrgID, id.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]pendingApprovalResponse, 0, len(pending))
	for _, p := range pending {
		out = append(out, pendingApprovalResponse{
			Workflow: toWorkflowResponse(p.Workflow),
			Step:     toStepResponse(p.Step),
		})
	}
	respondData(w, http.StatusOK, out)
}

func (s *Server) workflowStatistics(w http.ResponseWriter, r *http.Request) {
	var start, end *time.Time
	if v := r.URL.Query().Get("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid startDate"))
			return
		}
		start = &t
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid endDate"))
			return
		}
		end = &t
	}

	stats, err := s.uc.Approval.Statistics(r.Context(), identityOf(r).OrgID, start, end)
	if err != nil {
		respondError(w, r, err)
		return
	}

	byStatus := make(map[string]int, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[status.String()] = count
	}
	respondData(w, http.StatusOK, map[string]any{
		"total":                   stats.Total,
		"byStatus":                byStatus,
		"approvalRate":            stats.ApprovalRate,
		"rejectionRate":           stats.RejectionRate,
		"averageApprovalTimeDays": stats.AverageApprovalTimeDays,
	})
}
