package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/types"
	"github.com/trm-lab/argus/pkg/usecase"
)

func vendorIDOf(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "vendorID"), 10, 64)
	if err != nil {
		return 0, goerr.Wrap(usecase.ErrInvalidInput, "invalid vendor ID")
	}
	return id, nil
}

func (s *Server) createVendor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                string   `json:"name"`
		LegalName           string   `json:"legalName"`
		Category            string   `json:"category"`
		VendorType          string   `json:"vendorType"`
		Tier                string   `json:"tier"`
		SensitiveDataTypes  []string `json:"sensitiveDataTypes"`
		UsesSubcontractors  bool     `json:"usesSubcontractors"`
		ContractValue       float64  `json:"contractValue"`
		GeographicFootprint []string `json:"geographicFootprint"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed request body"))
		return
	}

	id := identityOf(r)
	vendor, err := s.uc.Vendor.CreateVendor(r.Context(), id.OrgID, usecase.CreateVendorInput{
		Name:                req.Name,
		LegalName:           req.LegalName,
		Category:            req.Category,
		VendorType:          req.VendorType,
		Tier:                types.VendorTier(req.Tier),
		SensitiveDataTypes:  req.SensitiveDataTypes,
		UsesSubcontractors:  req.UsesSubcontractors,
		ContractValue:       req.ContractValue,
		GeographicFootprint: req.GeographicFootprint,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toVendorResponse(vendor))
}

func (s *Server) getVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, err := vendorIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	vendor, err := s.uc.Vendor.GetVendor(r.Context(), identityOf(r).OrgID, vendorID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toVendorResponse(vendor))
}

func (s *Server) listVendors(w http.ResponseWriter, r *http.Request) {
	var opts []interfaces.ListVendorOption
	if category := r.URL.Query().Get("category"); category != "" {
		opts = append(opts, interfaces.WithCategory(category))
	}
	if status := r.URL.Query().Get("status"); status != "" {
		parsed, err := types.ParseVendorStatus(status)
		if err != nil {
			respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid status filter"))
			return
		}
		opts = append(opts, interfaces.WithStatuses(parsed))
	}

	vendors, err := s.uc.Vendor.ListVendors(r.Context(), identityOf(r).OrgID, opts...)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toVendorResponses(vendors))
}

func (s *Server) updateVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, err := vendorIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Name                *string  `json:"name"`
		LegalName           *string  `json:"legalName"`
		Category            *string  `json:"category"`
		VendorType          *string  `json:"vendorType"`
		Tier                *string  `json:"tier"`
		SensitiveDataTypes  []string `json:"sensitiveDataTypes"`
		UsesSubcontractors  *bool    `json:"usesSubcontractors"`
		ContractValue       *float64 `json:"contractValue"`
		GeographicFootprint []string `json:"geographicFootprint"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed request body"))
		return
	}

	input := usecase.UpdateVendorInput{
		Name:                req.Name,
		LegalName:           req.LegalName,
		Category:            req.Category,
		VendorType:          req.VendorType,
		SensitiveDataTypes:  req.SensitiveDataTypes,
		UsesSubcontractors:  req.UsesSubcontractors,
		ContractValue:       req.ContractValue,
		GeographicFootprint: req.GeographicFootprint,
	}
	if req.Tier != nil {
		tier := types.VendorTier(*req.Tier)
		input.Tier = &tier
	}

	vendor, err := s.uc.Vendor.UpdateVendor(r.Context(), identityOf(r).OrgID, vendorID, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toVendorResponse(vendor))
}

func (s *Server) changeVendorStatus(w http.ResponseWriter, r *http.Request) {
	vendorID, err := vendorIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed request body"))
		return
	}

	vendor, err := s.uc.Vendor.ChangeStatus(r.Context(), identityOf(r).OrgID, vendorID, types.VendorStatus(req.Status))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toVendorResponse(vendor))
}

func (s *Server) completeAssessment(w http.ResponseWriter, r *http.Request) {
	vendorID, err := vendorIDOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		OverallScore int `json:"overallScore"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed request body"))
		return
	}

	vendor, err := s.uc.Vendor.CompleteAssessment(r.Context(), identityOf(r).OrgID, vendorID, req.OverallScore)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toVendorResponse(vendor))
}
