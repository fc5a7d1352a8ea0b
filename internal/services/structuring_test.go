package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rfpdesk/api/internal/models"
)

const sampleRFP = `Procurement portal for district offices

We need a web portal for tender publication.
- Backend API for tender workflow
• Role based access
Frontend in React
Hosting on a government cloud
Budget: Rs 12,00,000
Timeline: 4 months from award
`

func TestGenerateStructuredRFP(t *testing.T) {
	got := GenerateStructuredRFP(sampleRFP)

	assert.Equal(t, "Procurement portal for district offices", got.Title)
	assert.Equal(t, sampleRFP, got.Description)
	assert.Equal(t, "Budget: Rs 12,00,000", got.Budget)
	assert.Equal(t, "Timeline: 4 months from award", got.Timeline)
	assert.Equal(t, []string{
		"Backend API for tender workflow",
		"Role based access",
		"Frontend in React",
		"Hosting on a government cloud",
	}, got.Requirements)
	assert.Equal(t, []string{"Project Plan", "Source Code", "Deployment", "Documentation"}, got.Deliverables)
}

func TestGenerateStructuredRFP_DescriptionIsVerbatim(t *testing.T) {
	inputs := []string{"", "   ", "\n\n", "Only a title", "₹ only", "\r\nmixed\rendings\n"}
	for _, in := range inputs {
		assert.Equal(t, in, GenerateStructuredRFP(in).Description)
	}
}

func TestGenerateStructuredRFP_Empty(t *testing.T) {
	got := GenerateStructuredRFP("")

	assert.Equal(t, "", got.Title)
	assert.Equal(t, "", got.Budget)
	assert.Equal(t, "", got.Timeline)
	assert.NotNil(t, got.Requirements)
	assert.Empty(t, got.Requirements)
	assert.Len(t, got.Deliverables, 4)
}

func TestGenerateStructuredRFP_BudgetMatchesInsideWords(t *testing.T) {
	// "rs" is a substring keyword, so "hours" selects the line
	got := GenerateStructuredRFP("Title\nSupport hours 9-5\nBudget: 10 lakhs")
	assert.Equal(t, "Support hours 9-5", got.Budget)
}

func TestParseVendorEmail(t *testing.T) {
	body := `From: Acme Infosys
Thanks for the RFP.
Our price is Rs 9,50,000 all inclusive.
Delivery timeline: 10 weeks
Tech stack: Go backend, React frontend
Includes 12 months warranty and support
`
	got := ParseVendorEmail(body)

	assert.Equal(t, models.StructuredProposal{
		VendorName:       "Acme Infosys",
		Pricing:          "Our price is Rs 9,50,000 all inclusive.",
		Timeline:         "Delivery timeline: 10 weeks",
		TechnicalDetails: "Tech stack: Go backend, React frontend",
		Terms:            "Includes 12 months warranty and support",
	}, got)
}

func TestParseVendorEmail_Empty(t *testing.T) {
	got := ParseVendorEmail("")

	assert.Equal(t, models.StructuredProposal{VendorName: "Vendor"}, got)
}

func TestParseVendorEmail_StructuredThenCompared(t *testing.T) {
	a := ParseVendorEmail("From: Alpha\nCost: 500000")
	b := ParseVendorEmail("From: Beta\nCost: 450000\nAPI first design")

	report := CompareProposals(GenerateStructuredRFP(sampleRFP), []models.StructuredProposal{a, b})
	require.Len(t, report.Comparison, 2)
	assert.Equal(t, "Beta", report.BestVendor)
	assert.Equal(t, []string{"Competitive pricing", "Technical details provided"}, report.Comparison[1].Strengths)
}
