package services

import "rfpdesk/api/internal/models"

const (
	summaryNoProposals = "No proposals to compare."
	summaryByPrice     = "Offline comparator: selected vendor based on lowest numeric pricing where available."

	strengthPricing   = "Competitive pricing"
	strengthTechnical = "Technical details provided"
	weaknessNoPricing = "No pricing provided"
)

// vendorIdentity is the name shown for a proposal: its vendor name, else its email
func vendorIdentity(p models.StructuredProposal) string {
	if p.VendorName != "" {
		return p.VendorName
	}
	return p.Email
}

// CompareProposals ranks proposals by the lowest numeric price found in their pricing line.
// The first proposal with the lowest price wins ties; if no proposal has a price the
// first one is selected. Every proposal gets an entry, in input order.
// The rfp is accepted for future criteria and is not consulted yet.
func CompareProposals(rfp models.StructuredRFP, proposals []models.StructuredProposal) models.ComparisonReport {
	if len(proposals) == 0 {
		return models.ComparisonReport{
			Summary:    summaryNoProposals,
			BestVendor: "",
			Comparison: []models.ComparisonEntry{},
		}
	}

	bestIdx := 0
	var bestPrice int64
	havePrice := false
	comparison := make([]models.ComparisonEntry, 0, len(proposals))

	for i, p := range proposals {
		price, ok := ExtractPriceNumber(p.Pricing)
		if ok && (!havePrice || price < bestPrice) {
			bestPrice = price
			bestIdx = i
			havePrice = true
		}

		entry := models.ComparisonEntry{
			VendorName: vendorIdentity(p),
			Strengths:  []string{},
			Weaknesses: []string{},
		}
		if ok {
			entry.Strengths = append(entry.Strengths, strengthPricing)
			entry.Price = &price
		} else {
			entry.Weaknesses = append(entry.Weaknesses, weaknessNoPricing)
		}
		if p.TechnicalDetails != "" {
			entry.Strengths = append(entry.Strengths, strengthTechnical)
		}
		comparison = append(comparison, entry)
	}

	return models.ComparisonReport{
		Summary:    summaryByPrice,
		BestVendor: vendorIdentity(proposals[bestIdx]),
		Comparison: comparison,
	}
}
