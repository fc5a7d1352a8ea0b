package services

// Field names used in the keyword tables
const (
	FieldBudget           = "budget"
	FieldTimeline         = "timeline"
	FieldRequirements     = "requirements"
	FieldPricing          = "pricing"
	FieldTechnicalDetails = "technical_details"
	FieldTerms            = "terms"
)

// KeywordTable maps a structured field to the lower-case keywords that select its line.
// Keyword order matters only for readability; the first matching line wins.
type KeywordTable map[string][]string

// timelineKeywords is shared so RFP and proposal timelines never drift apart
var timelineKeywords = []string{"timeline", "month", "week"}

// RFPKeywords drives GenerateStructuredRFP.
// The bullet markers in requirements are already caught by the bullet rule in ExtractList.
var RFPKeywords = KeywordTable{
	FieldBudget:       {"budget", "₹", "rs", "lakhs"},
	FieldTimeline:     timelineKeywords,
	FieldRequirements: {"- ", "• ", "backend", "frontend", "database", "cloud"},
}

// ProposalKeywords drives ParseVendorEmail.
var ProposalKeywords = KeywordTable{
	FieldPricing:          {"price", "cost", "budget", "₹", "rs"},
	FieldTimeline:         timelineKeywords,
	FieldTechnicalDetails: {"tech", "stack", "api", "backend", "frontend"},
	FieldTerms:            {"term", "condition", "support", "warranty"},
}
