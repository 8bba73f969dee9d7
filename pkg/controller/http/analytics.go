package http

import (
	"net/http"

	"github.com/trm-lab/argus/pkg/domain/model"
)

func (s *Server) concentrationRisk(w http.ResponseWriter, r *http.Request) {
	report, err := s.uc.Analytics.ConcentrationRisk(r.Context(), identityOf(r).OrgID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	spofs := make([]map[string]any, 0, len(report.SinglePointsOfFailure))
	for _, spof := range report.SinglePointsOfFailure {
		spofs = append(spofs, map[string]any{
			"vendorId":   spof.VendorID,
			"vendorName": spof.VendorName,
			"category":   spof.Category,
			"tier":       spof.Tier.String(),
			"hasBackup":  spof.HasBackup,
		})
	}

	respondData(w, http.StatusOK, map[string]any{
		"spendConcentration": map[string]any{
			"totalSpend":    report.SpendConcentration.TotalSpend,
			"top1Percent":   report.SpendConcentration.Top1Percent,
			"top3Percent":   report.SpendConcentration.Top3Percent,
			"top5Percent":   report.SpendConcentration.Top5Percent,
			"top10Percent":  report.SpendConcentration.Top10Percent,
			"largestVendor": report.SpendConcentration.LargestVendor,
		},
		"geographicConcentration": map[string]any{
			"countryCounts":     report.Geographic.CountryCounts,
			"distinctCountries": report.Geographic.DistinctCountries,
			"dominantCountry":   report.Geographic.DominantCountry,
			"dominantShare":     report.Geographic.DominantShare,
			"riskLevel":         report.Geographic.RiskLevel.String(),
		},
		"categoryConcentration": map[string]any{
			"categoryCounts":      report.Category.CategoryCounts,
			"criticalByCategory":  report.Category.CriticalByCategory,
			"highestRiskCategory": report.Category.HighestRiskCategory,
		},
		"singlePointsOfFailure": spofs,
		"overallScore":          report.OverallScore,
		"overallRiskRating":     report.OverallRiskRating.String(),
		"vendorCount":           report.VendorCount,
	})
}

func (s *Server) listRiskAppetite(w http.ResponseWriter, r *http.Request) {
	appetites, err := s.uc.Appetite.List(r.Context(), identityOf(r).OrgID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toAppetiteResponses(appetites))
}

func (s *Server) evaluateRiskAppetite(w http.ResponseWriter, r *http.Request) {
	appetites, err := s.uc.Appetite.Evaluate(r.Context(), identityOf(r).OrgID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toAppetiteResponses(appetites))
}

func (s *Server) listAppetiteBreaches(w http.ResponseWriter, r *http.Request) {
	breaches, err := s.uc.Appetite.ListBreaches(r.Context(), identityOf(r).OrgID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(breaches))
	for _, b := range breaches {
		out = append(out, map[string]any{
			"id":                  b.ID,
			"category":            b.Category,
			"thresholdExceeded":   b.ThresholdExceeded,
			"actualLevel":         b.ActualLevel,
			"excessAmount":        b.ExcessAmount,
			"contributingFactors": b.ContributingFactors,
			"escalatedToBoard":    b.EscalatedToBoard,
			"boardActionRequired": b.BoardActionRequired,
			"createdAt":           b.CreatedAt,
		})
	}
	respondData(w, http.StatusOK, out)
}

func (s *Server) listAuditEntries(w http.ResponseWriter, r *http.Request) {
	filter := model.AuditFilter{
		EntityType: r.URL.Query().Get("entityType"),
		EntityID:   r.URL.Query().Get("entityId"),
		Actor:      r.URL.Query().Get("actor"),
		Limit:      100,
	}

	entries, err := s.uc.Audit.List(r.Context(), identityOf(r).OrgID, filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			ID:         e.ID,
			Actor:      e.Actor,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Detail:     e.Detail,
			CreatedAt:  e.CreatedAt,
		})
	}
	respondData(w, http.StatusOK, out)
}
