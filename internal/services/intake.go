package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"rfpdesk/api/internal/logging"
	"rfpdesk/api/internal/models"
	"rfpdesk/api/internal/repositories"
)

// Intake outcomes
const (
	OutcomeNew       = "new"
	OutcomeSkipped   = "skipped"
	OutcomeUnmatched = "unmatched"
	OutcomeError     = "error"
)

// Proposal sources
const (
	SourceInbox  = "inbox"
	SourceManual = "manual"
)

type VendorFinder interface {
	GetVendorByEmail(ctx context.Context, email string) (*models.Vendor, error)
}

type RFPFinder interface {
	GetRFP(ctx context.Context, id int) (*models.RFP, error)
	GetLatestRFP(ctx context.Context) (*models.RFP, error)
}

type ProposalWriter interface {
	CreateProposal(ctx context.Context, p *models.Proposal) (*models.Proposal, bool, error)
}

// IntakeStats summarizes one inbox poll.
type IntakeStats struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Skipped   int `json:"skipped"`
	Unmatched int `json:"unmatched"`
	Errors    int `json:"errors"`
}

func (s *IntakeStats) record(outcome string) {
	s.Total++
	switch outcome {
	case OutcomeNew:
		s.New++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeUnmatched:
		s.Unmatched++
	case OutcomeError:
		s.Errors++
	}
}

// ProposalIntake turns vendor replies into stored proposals.
type ProposalIntake struct {
	source    MessageSource
	vendors   VendorFinder
	rfps      RFPFinder
	proposals ProposalWriter
	logger    *zap.Logger
	metrics   *Metrics
}

// NewProposalIntake wires intake. source may be nil when only manual submissions are used.
func NewProposalIntake(source MessageSource, vendors VendorFinder, rfps RFPFinder, proposals ProposalWriter, logger *zap.Logger, metrics *Metrics) *ProposalIntake {
	return &ProposalIntake{
		source:    source,
		vendors:   vendors,
		rfps:      rfps,
		proposals: proposals,
		logger:    logging.OrNop(logger),
		metrics:   metrics,
	}
}

// ErrNoMessageSource is returned by Poll when no inbox is configured.
var ErrNoMessageSource = errors.New("no inbox configured")

// ComputeContentHash computes SHA256 hash of text for duplicate detection
func ComputeContentHash(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// Poll processes every unseen message in the inbox.
func (s *ProposalIntake) Poll(ctx context.Context) (*IntakeStats, error) {
	stats := &IntakeStats{}
	if s.source == nil {
		return stats, ErrNoMessageSource
	}

	err := s.source.Poll(ctx, func(ctx context.Context, msg InboundMessage) error {
		outcome, err := s.ProcessMessage(ctx, msg)
		stats.record(outcome)
		s.metrics.inboxMessage(outcome)
		return err
	})
	if err != nil {
		return stats, fmt.Errorf("failed to poll inbox: %w", err)
	}
	return stats, nil
}

// ProcessMessage stores one inbound reply as a proposal.
// Replies from unknown senders, or when no RFP exists yet, are unmatched and not an error.
func (s *ProposalIntake) ProcessMessage(ctx context.Context, msg InboundMessage) (string, error) {
	log := s.logger.With(zap.String("from", msg.From), zap.String("subject", msg.Subject))

	vendor, err := s.vendors.GetVendorByEmail(ctx, msg.From)
	if errors.Is(err, repositories.ErrNotFound) {
		log.Warn("vendor not found for email")
		return OutcomeUnmatched, nil
	}
	if err != nil {
		return OutcomeError, fmt.Errorf("failed to look up vendor: %w", err)
	}

	rfp, err := s.resolveRFP(ctx, msg.Subject)
	if errors.Is(err, repositories.ErrNotFound) {
		log.Warn("no rfp to attach reply to")
		return OutcomeUnmatched, nil
	}
	if err != nil {
		return OutcomeError, err
	}

	_, created, err := s.store(ctx, *vendor, rfp.ID, msg.Body, SourceInbox)
	if err != nil {
		return OutcomeError, err
	}
	if !created {
		log.Info("duplicate reply skipped", zap.Int("rfp_id", rfp.ID), zap.Int("vendor_id", vendor.ID))
		return OutcomeSkipped, nil
	}
	log.Info("proposal created", zap.Int("rfp_id", rfp.ID), zap.Int("vendor_id", vendor.ID))
	return OutcomeNew, nil
}

// resolveRFP uses the [RFP-<id>] token in the subject when present and known;
// otherwise the reply is attached to the most recent RFP.
func (s *ProposalIntake) resolveRFP(ctx context.Context, subject string) (*models.RFP, error) {
	if id, ok := RFPReference(subject); ok {
		rfp, err := s.rfps.GetRFP(ctx, id)
		if err == nil {
			return rfp, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to get referenced rfp: %w", err)
		}
		s.logger.Warn("referenced rfp does not exist, using latest", zap.Int("rfp_id", id))
	}

	rfp, err := s.rfps.GetLatestRFP(ctx)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to get latest rfp: %w", err)
	}
	return rfp, err
}

// Submit stores a reply entered by hand for a known vendor and RFP.
func (s *ProposalIntake) Submit(ctx context.Context, vendor models.Vendor, rfpID int, text string) (*models.Proposal, bool, error) {
	return s.store(ctx, vendor, rfpID, NormalizeRaw(text), SourceManual)
}

func (s *ProposalIntake) store(ctx context.Context, vendor models.Vendor, rfpID int, body, source string) (*models.Proposal, bool, error) {
	parsed := ParseVendorEmail(body)
	parsed.Email = strings.ToLower(strings.TrimSpace(vendor.Email))

	stored, created, err := s.proposals.CreateProposal(ctx, &models.Proposal{
		VendorID:    vendor.ID,
		RFPID:       rfpID,
		ContentRaw:  body,
		ParsedJSON:  parsed,
		ContentHash: ComputeContentHash(body),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to store proposal: %w", err)
	}
	if created {
		s.metrics.proposalParsed(source)
	}
	return stored, created, nil
}
