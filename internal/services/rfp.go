package services

import "rfpdesk/api/internal/models"

// GenerateStructuredRFP turns free-text RFP input into a StructuredRFP.
// Any input, including "", yields a complete record; Description is always the input verbatim.
func GenerateStructuredRFP(text string) models.StructuredRFP {
	requirements := ExtractList(text, RFPKeywords[FieldRequirements])
	return models.StructuredRFP{
		Title:        FirstNonEmptyLine(text),
		Description:  text,
		Budget:       ExtractLine(text, RFPKeywords[FieldBudget]),
		Timeline:     ExtractLine(text, RFPKeywords[FieldTimeline]),
		Requirements: requirements,
		Deliverables: InferDeliverables(requirements),
	}
}
