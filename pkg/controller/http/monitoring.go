package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/types"
	"github.com/trm-lab/argus/pkg/usecase"
)

func (s *Server) recordSignal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VendorID       int64  `json:"vendorId"`
		MonitoringType string `json:"monitoringType"`
		RiskLevel      string `json:"riskLevel"`
		RiskIndicator  string `json:"riskIndicator"`
		CurrentValue   string `json:"currentValue"`
		PreviousValue  string `json:"previousValue"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed request body"))
		return
	}

	signal, err := s.uc.Monitoring.RecordSignal(r.Context(), identityOf(r).OrgID, usecase.SignalInput{
		VendorID:       req.VendorID,
		MonitoringType: types.MonitoringType(req.MonitoringType),
		RiskLevel:      types.RiskLevel(req.RiskLevel),
		RiskIndicator:  req.RiskIndicator,
		CurrentValue:   req.CurrentValue,
		PreviousValue:  req.PreviousValue,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toSignalResponse(signal))
}

func (s *Server) acknowledgeSignal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ActionTaken string `json:"actionTaken"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed request body"))
		return
	}

	id := identityOf(r)
	signal, err := s.uc.Monitoring.AcknowledgeSignal(r.Context(), id.OrgID, chi.URLParam(r, "signalID"), id.UserID, req.ActionTaken)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toSignalResponse(signal))
}

func (s *Server) resolveSignal(w http.ResponseWriter, r *http.Request) {
	id := identityOf(r)
	signal, err := s.uc.Monitoring.ResolveSignal(r.Context(), id.OrgID, chi.URLParam(r, "signalID"), id.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toSignalResponse(signal))
}

func (s *Server) listVendorSignals(w http.ResponseWriter, r *http.Request) {
	vendorID, err := vendorIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	signals, err := s.uc.Monitoring.ListByVendor(r.Context(), identityOf(r).OrgID, vendorID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]signalResponse, 0, len(signals))
	for _, sig := range signals {
		out = append(out, toSignalResponse(sig))
	}
	respondData(w, http.StatusOK, out)
}

func (s *Server) monitoringSchedule(w http.ResponseWriter, r *http.Request) {
	entries, err := s.uc.Monitoring.Schedule(r.Context(), identityOf(r).OrgID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]scheduleEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, scheduleEntryResponse{
			VendorID:      e.VendorID,
			VendorName:    e.VendorName,
			Tier:          e.Tier.String(),
			CheckInterval: e.CheckInterval.String(),
			LastCheckedAt: e.LastCheckedAt,
			NextCheckAt:   e.NextCheckAt,
			Due:           e.Due,
		})
	}
	respondData(w, http.StatusOK, out)
}
