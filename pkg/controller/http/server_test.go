package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/trm-lab/argus/pkg/controller/http"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/model/auth"
	"github.com/trm-lab/argus/pkg/domain/model/config"
	"github.com/trm-lab/argus/pkg/domain/types"
	"github.com/trm-lab/argus/pkg/repository/memory"
	"github.com/trm-lab/argus/pkg/usecase"
)

const testOrgID = "org-test"

type staticResolver map[string]*auth.Identity

func (r staticResolver) Resolve(token string) (*auth.Identity, bool) {
	id, ok := r[token]
	return id, ok
}

func newTestServer(t *testing.T) (*httpctrl.Server, *memory.Memory) {
	t.Helper()

	registry := model.NewOrgRegistry()
	registry.Register(&model.OrgEntry{
		Organization: model.Organization{ID: testOrgID, Name: "Test Org"},
		Chains:       map[string][]config.ChainStep{},
		Appetites:    []config.AppetiteDefinition{},
	})

	repo := memory.New()
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	uc := usecase.New(repo, registry, usecase.WithClock(func() time.Time { return now }))

	resolver := staticResolver{
		"tok-risk": {UserID: "u-risk", Name: "Riley Risk", Role: types.RoleRiskManager, OrgID: testOrgID},
		"tok-bob":  {UserID: "u-bob", Name: "Bob Owner", Role: types.RoleBusinessOwner, OrgID: testOrgID},
		"tok-out":  {UserID: "u-out", Name: "Outsider", Role: types.RoleRiskManager, OrgID: "org-other"},
	}
	return httpctrl.New(uc, resolver), repo
}

func request(t *testing.T, srv *httpctrl.Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(body)).Required()
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope)).Required()
	gt.Bool(t, envelope.Success).True()
	if dst != nil {
		gt.NoError(t, json.Unmarshal(envelope.Data, dst)).Required()
	}
}

func TestAuthentication(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		rec := request(t, srv, http.MethodGet, "/api/v1/vendors", "", nil)
		gt.Number(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("unknown token", func(t *testing.T) {
		rec := request(t, srv, http.MethodGet, "/api/v1/vendors", "tok-nope", nil)
		gt.Number(t, rec.Code).Equal(http.StatusUnauthorized)

		var envelope struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope)).Required()
		gt.Bool(t, envelope.Success).False()
		gt.Value(t, envelope.Error).Equal("invalid token")
	})
}

func TestVendorEndpoints(t *testing.T) {
	createBody := map[string]any{
		"name":               "Acme Cloud",
		"category":           "cloud",
		"tier":               "CRITICAL",
		"sensitiveDataTypes": []string{"PII", "PCI"},
		"usesSubcontractors": true,
		"contractValue":      250000,
	}

	t.Run("create returns the derived scores", func(t *testing.T) {
		srv, _ := newTestServer(t)

		rec := request(t, srv, http.MethodPost, "/api/v1/vendors", "tok-risk", createBody)
		gt.Number(t, rec.Code).Equal(http.StatusCreated)

		var vendor struct {
			ID                int64  `json:"id"`
			Status            string `json:"status"`
			InherentRiskScore int    `json:"inherentRiskScore"`
			ResidualRiskScore int    `json:"residualRiskScore"`
		}
		decodeData(t, rec, &vendor)
		gt.Number(t, vendor.ID).NotEqual(0)
		gt.Value(t, vendor.Status).Equal("PROPOSED")
		gt.Number(t, vendor.InherentRiskScore).Equal(76)
		gt.Number(t, vendor.ResidualRiskScore).Equal(76)
	})

	t.Run("create requires the vendor capability", func(t *testing.T) {
		srv, _ := newTestServer(t)

		rec := request(t, srv, http.MethodPost, "/api/v1/vendors", "tok-bob", createBody)
		gt.Number(t, rec.Code).Equal(http.StatusForbidden)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/vendors", bytes.NewBufferString("{not json"))
		req.Header.Set("Authorization", "Bearer tok-risk")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown vendor", func(t *testing.T) {
		srv, _ := newTestServer(t)

		rec := request(t, srv, http.MethodGet, "/api/v1/vendors/999", "tok-risk", nil)
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("list is tenant scoped", func(t *testing.T) {
		srv, _ := newTestServer(t)

		rec := request(t, srv, http.MethodPost, "/api/v1/vendors", "tok-risk", createBody)
		gt.Number(t, rec.Code).Equal(http.StatusCreated)

		rec = request(t, srv, http.MethodGet, "/api/v1/vendors", "tok-risk", nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		var mine []json.RawMessage
		decodeData(t, rec, &mine)
		gt.Array(t, mine).Length(1)

		rec = request(t, srv, http.MethodGet, "/api/v1/vendors", "tok-out", nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		var theirs []json.RawMessage
		decodeData(t, rec, &theirs)
		gt.Array(t, theirs).Length(0)
	})

	t.Run("invalid status transition", func(t *testing.T) {
		srv, repo := newTestServer(t)

		_, err := repo.Vendor().Create(context.Background(), testOrgID, &model.Vendor{
			Name: "Acme", Tier: types.TierLow, Status: types.VendorStatusActive,
		})
		gt.NoError(t, err).Required()

		rec := request(t, srv, http.MethodPost, "/api/v1/vendors/1/status", "tok-risk",
			map[string]string{"status": "TERMINATED"})
		gt.Number(t, rec.Code).Equal(http.StatusUnprocessableEntity)
	})
}

func TestApprovalEndpoints(t *testing.T) {
	seed := func(t *testing.T, srv *httpctrl.Server) int64 {
		t.Helper()
		rec := request(t, srv, http.MethodPost, "/api/v1/vendors", "tok-risk", map[string]any{
			"name": "Acme Cloud", "tier": "HIGH",
		})
		gt.Number(t, rec.Code).Equal(http.StatusCreated)

		var vendor struct {
			ID int64 `json:"id"`
		}
		decodeData(t, rec, &vendor)
		return vendor.ID
	}

	workflowBody := func(vendorID int64) map[string]any {
		return map[string]any{
			"vendorId":     vendorID,
			"workflowType": "ONBOARDING",
			"approvalChain": []map[string]string{
				{"approverRole": "RISK_MANAGER", "approverUserId": "u-risk"},
				{"approverRole": "CISO", "approverUserId": "u-ciso"},
			},
		}
	}

	t.Run("workflow lifecycle over the wire", func(t *testing.T) {
		srv, _ := newTestServer(t)
		vendorID := seed(t, srv)

		rec := request(t, srv, http.MethodPost, "/api/v1/vendors/approvals/workflows", "tok-risk", workflowBody(vendorID))
		gt.Number(t, rec.Code).Equal(http.StatusCreated)

		var workflow struct {
			ID          int64  `json:"id"`
			Status      string `json:"status"`
			CurrentStep int    `json:"currentStep"`
			Steps       []struct {
				StepOrder    int    `json:"stepOrder"`
				ApproverRole string `json:"approverRole"`
			} `json:"steps"`
		}
		decodeData(t, rec, &workflow)
		gt.Value(t, workflow.Status).Equal("PENDING")
		gt.Array(t, workflow.Steps).Length(2)

		rec = request(t, srv, http.MethodPost,
			"/api/v1/vendors/approvals/workflows/1/steps/1/approve", "tok-risk",
			map[string]string{"decision": "APPROVED"})
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		decodeData(t, rec, &workflow)
		gt.Value(t, workflow.Status).Equal("IN_PROGRESS")
		gt.Number(t, workflow.CurrentStep).Equal(2)

		// The same step cannot be decided twice
		rec = request(t, srv, http.MethodPost,
			"/api/v1/vendors/approvals/workflows/1/steps/1/approve", "tok-risk",
			map[string]string{"decision": "REJECTED"})
		gt.Number(t, rec.Code).Equal(http.StatusConflict)

		// Skipping ahead is refused
		rec = request(t, srv, http.MethodPost,
			"/api/v1/vendors/approvals/workflows/1/steps/3/approve", "tok-risk",
			map[string]string{"decision": "APPROVED"})
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)

		rec = request(t, srv, http.MethodPost,
			"/api/v1/vendors/approvals/workflows/1/steps/2/approve", "tok-risk",
			map[string]string{"decision": "APPROVED"})
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		decodeData(t, rec, &workflow)
		gt.Value(t, workflow.Status).Equal("APPROVED")

		// Onboarding approval flips the vendor
		rec = request(t, srv, http.MethodGet, "/api/v1/vendors/1", "tok-risk", nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		var vendor struct {
			Status string `json:"status"`
		}
		decodeData(t, rec, &vendor)
		gt.Value(t, vendor.Status).Equal("APPROVED")
	})

	t.Run("empty chain is a bad request", func(t *testing.T) {
		srv, _ := newTestServer(t)
		vendorID := seed(t, srv)

		rec := request(t, srv, http.MethodPost, "/api/v1/vendors/approvals/workflows", "tok-risk",
			map[string]any{"vendorId": vendorID, "workflowType": "ONBOARDING"})
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("duplicate active workflow conflicts", func(t *testing.T) {
		srv, _ := newTestServer(t)
		vendorID := seed(t, srv)

		rec := request(t, srv, http.MethodPost, "/api/v1/vendors/approvals/workflows", "tok-risk", workflowBody(vendorID))
		gt.Number(t, rec.Code).Equal(http.StatusCreated)

		rec = request(t, srv, http.MethodPost, "/api/v1/vendors/approvals/workflows", "tok-risk", workflowBody(vendorID))
		gt.Number(t, rec.Code).Equal(http.StatusConflict)
	})

	t.Run("cancel requires the workflow capability", func(t *testing.T) {
		srv, _ := newTestServer(t)
		vendorID := seed(t, srv)

		rec := request(t, srv, http.MethodPost, "/api/v1/vendors/approvals/workflows", "tok-risk", workflowBody(vendorID))
		gt.Number(t, rec.Code).Equal(http.StatusCreated)

		rec = request(t, srv, http.MethodPost, "/api/v1/vendors/approvals/workflows/1/cancel", "tok-bob",
			map[string]string{"reason": "nope"})
		gt.Number(t, rec.Code).Equal(http.StatusForbidden)

		rec = request(t, srv, http.MethodPost, "/api/v1/vendors/approvals/workflows/1/cancel", "tok-risk",
			map[string]string{"reason": "vendor withdrew"})
		gt.Number(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("pending approvals inbox", func(t *testing.T) {
		srv, _ := newTestServer(t)
		vendorID := seed(t, srv)

		rec := request(t, srv, http.MethodPost, "/api/v1/vendors/approvals/workflows", "tok-risk", workflowBody(vendorID))
		gt.Number(t, rec.Code).Equal(http.StatusCreated)

		rec = request(t, srv, http.MethodGet, "/api/v1/vendors/approvals/pending", "tok-risk", nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		var pending []struct {
			Step struct {
				StepOrder int `json:"stepOrder"`
			} `json:"step"`
		}
		decodeData(t, rec, &pending)
		gt.Array(t, pending).Length(1)
		gt.Number(t, pending[0].Step.StepOrder).Equal(1)
	})
}

func TestMonitoringEndpoints(t *testing.T) {
	srv, repo := newTestServer(t)
	ctx := context.Background()

	vendor, err := repo.Vendor().Create(ctx, testOrgID, &model.Vendor{
		Name: "Acme Cloud", Tier: types.TierCritical, Status: types.VendorStatusActive,
	})
	gt.NoError(t, err).Required()

	rec := request(t, srv, http.MethodPost, "/api/v1/monitoring/signals", "tok-risk", map[string]any{
		"vendorId":       vendor.ID,
		"monitoringType": "SECURITY_RATING",
		"riskLevel":      "High",
		"riskIndicator":  "rating slide",
		"currentValue":   "60",
		"previousValue":  "75",
	})
	gt.Number(t, rec.Code).Equal(http.StatusCreated)

	var signal struct {
		ID             string `json:"id"`
		RequiresAction bool   `json:"requiresAction"`
		ChangeDetected bool   `json:"changeDetected"`
	}
	decodeData(t, rec, &signal)
	gt.Bool(t, signal.RequiresAction).True()
	gt.Bool(t, signal.ChangeDetected).True()

	rec = request(t, srv, http.MethodPost, "/api/v1/monitoring/signals/"+signal.ID+"/acknowledge", "tok-risk",
		map[string]string{"actionTaken": "reviewed"})
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	rec = request(t, srv, http.MethodPost, "/api/v1/monitoring/signals/"+signal.ID+"/resolve", "tok-risk", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	var resolved struct {
		AcknowledgedBy string `json:"acknowledgedBy"`
		ResolvedBy     string `json:"resolvedBy"`
	}
	decodeData(t, rec, &resolved)
	gt.Value(t, resolved.AcknowledgedBy).Equal("u-risk")
	gt.Value(t, resolved.ResolvedBy).Equal("u-risk")

	rec = request(t, srv, http.MethodGet, "/api/v1/monitoring/schedule", "tok-risk", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	var schedule []struct {
		VendorID      int64  `json:"vendorId"`
		CheckInterval string `json:"checkInterval"`
		Due           bool   `json:"due"`
	}
	decodeData(t, rec, &schedule)
	gt.Array(t, schedule).Length(1)
	gt.Value(t, schedule[0].CheckInterval).Equal("24h0m0s")

	rec = request(t, srv, http.MethodPost, "/api/v1/monitoring/signals/missing/acknowledge", "tok-risk",
		map[string]string{"actionTaken": "noted"})
	gt.Number(t, rec.Code).Equal(http.StatusNotFound)
}

func TestAuditEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := request(t, srv, http.MethodPost, "/api/v1/vendors", "tok-risk", map[string]any{
		"name": "Acme", "tier": "LOW",
	})
	gt.Number(t, rec.Code).Equal(http.StatusCreated)

	rec = request(t, srv, http.MethodGet, "/api/v1/audit?entityType=vendor", "tok-risk", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	var entries []struct {
		Actor      string `json:"actor"`
		Action     string `json:"action"`
		EntityType string `json:"entityType"`
	}
	decodeData(t, rec, &entries)
	gt.Array(t, entries).Length(1)
	gt.Value(t, entries[0].Actor).Equal("u-risk")
	gt.Value(t, entries[0].EntityType).Equal("vendor")
}
