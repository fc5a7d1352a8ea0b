package services

import "rfpdesk/api/internal/models"

// ParseVendorEmail extracts a StructuredProposal from the plain-text body of a vendor reply.
func ParseVendorEmail(text string) models.StructuredProposal {
	return models.StructuredProposal{
		VendorName:       GuessVendorName(text),
		Pricing:          ExtractLine(text, ProposalKeywords[FieldPricing]),
		Timeline:         ExtractLine(text, ProposalKeywords[FieldTimeline]),
		TechnicalDetails: ExtractLine(text, ProposalKeywords[FieldTechnicalDetails]),
		Terms:            ExtractLine(text, ProposalKeywords[FieldTerms]),
	}
}
