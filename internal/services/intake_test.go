package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rfpdesk/api/internal/models"
	"rfpdesk/api/internal/repositories"
)

type fakeSource struct {
	messages []InboundMessage
	handled  []string // subjects whose handler returned nil
	err      error
}

func (s *fakeSource) Poll(ctx context.Context, handle func(context.Context, InboundMessage) error) error {
	for _, m := range s.messages {
		if err := handle(ctx, m); err == nil {
			s.handled = append(s.handled, m.Subject)
		}
	}
	return s.err
}

type fakeVendors map[string]models.Vendor

func (f fakeVendors) GetVendorByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	v, ok := f[strings.ToLower(email)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &v, nil
}

type fakeRFPs struct {
	rfps []models.RFP // ordered oldest first
	err  error
}

func (f *fakeRFPs) GetRFP(ctx context.Context, id int) (*models.RFP, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rfps {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeRFPs) GetLatestRFP(ctx context.Context) (*models.RFP, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.rfps) == 0 {
		return nil, repositories.ErrNotFound
	}
	r := f.rfps[len(f.rfps)-1]
	return &r, nil
}

type fakeProposals struct {
	stored []models.Proposal
	err    error
}

func (f *fakeProposals) CreateProposal(ctx context.Context, p *models.Proposal) (*models.Proposal, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	for _, s := range f.stored {
		if s.RFPID == p.RFPID && s.VendorID == p.VendorID && s.ContentHash == p.ContentHash {
			s := s
			return &s, false, nil
		}
	}
	stored := *p
	stored.ID = len(f.stored) + 1
	f.stored = append(f.stored, stored)
	return &stored, true, nil
}

func newTestIntake(source MessageSource, proposals *fakeProposals, metrics *Metrics) *ProposalIntake {
	vendors := fakeVendors{
		"sales@acme.example": {ID: 1, Name: "Acme Infosys", Email: "Sales@Acme.example"},
		"bids@globex.example": {ID: 2, Name: "Globex", Email: "bids@globex.example"},
	}
	rfps := &fakeRFPs{rfps: []models.RFP{{ID: 3, Title: "Older"}, {ID: 5, Title: "Latest"}}}
	return NewProposalIntake(source, vendors, rfps, proposals, nil, metrics)
}

func TestProcessMessage_StoresProposal(t *testing.T) {
	proposals := &fakeProposals{}
	intake := newTestIntake(nil, proposals, nil)

	outcome, err := intake.ProcessMessage(context.Background(), InboundMessage{
		From:    "sales@acme.example",
		Subject: "Re: RFP: Older [RFP-3]",
		Body:    "From: Acme Infosys\nPrice: Rs 4,00,000\nTimeline: 8 weeks\n",
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeNew, outcome)
	require.Len(t, proposals.stored, 1)

	p := proposals.stored[0]
	assert.Equal(t, 1, p.VendorID)
	assert.Equal(t, 3, p.RFPID)
	assert.Equal(t, ComputeContentHash(p.ContentRaw), p.ContentHash)
	assert.Equal(t, "Acme Infosys", p.ParsedJSON.VendorName)
	assert.Equal(t, "Price: Rs 4,00,000", p.ParsedJSON.Pricing)
	assert.Equal(t, "Timeline: 8 weeks", p.ParsedJSON.Timeline)
	assert.Equal(t, "sales@acme.example", p.ParsedJSON.Email)
}

func TestProcessMessage_FallsBackToLatestRFP(t *testing.T) {
	tests := []struct {
		name    string
		subject string
	}{
		{"no token", "Re: your request"},
		{"unknown token", "Re: RFP: Gone [RFP-99]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proposals := &fakeProposals{}
			intake := newTestIntake(nil, proposals, nil)

			outcome, err := intake.ProcessMessage(context.Background(), InboundMessage{
				From: "bids@globex.example", Subject: tt.subject, Body: "Cost 900",
			})

			require.NoError(t, err)
			assert.Equal(t, OutcomeNew, outcome)
			require.Len(t, proposals.stored, 1)
			assert.Equal(t, 5, proposals.stored[0].RFPID)
		})
	}
}

func TestProcessMessage_UnknownVendor(t *testing.T) {
	proposals := &fakeProposals{}
	intake := newTestIntake(nil, proposals, nil)

	outcome, err := intake.ProcessMessage(context.Background(), InboundMessage{
		From: "stranger@example.com", Subject: "hello", Body: "Price 1",
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeUnmatched, outcome)
	assert.Empty(t, proposals.stored)
}

func TestProcessMessage_NoRFPYet(t *testing.T) {
	proposals := &fakeProposals{}
	intake := NewProposalIntake(nil,
		fakeVendors{"bids@globex.example": {ID: 2, Email: "bids@globex.example"}},
		&fakeRFPs{}, proposals, nil, nil)

	outcome, err := intake.ProcessMessage(context.Background(), InboundMessage{
		From: "bids@globex.example", Body: "Price 1",
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeUnmatched, outcome)
	assert.Empty(t, proposals.stored)
}

func TestProcessMessage_DuplicateIsSkipped(t *testing.T) {
	proposals := &fakeProposals{}
	intake := newTestIntake(nil, proposals, nil)
	msg := InboundMessage{From: "bids@globex.example", Body: "Price 700"}

	first, err := intake.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	second, err := intake.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)

	assert.Equal(t, OutcomeNew, first)
	assert.Equal(t, OutcomeSkipped, second)
	assert.Len(t, proposals.stored, 1)
}

func TestProcessMessage_StorageError(t *testing.T) {
	proposals := &fakeProposals{err: errors.New("db down")}
	intake := newTestIntake(nil, proposals, nil)

	outcome, err := intake.ProcessMessage(context.Background(), InboundMessage{
		From: "bids@globex.example", Body: "Price 700",
	})

	require.Error(t, err)
	assert.Equal(t, OutcomeError, outcome)
	assert.Contains(t, err.Error(), "db down")
}

func TestProcessMessage_RFPLookupError(t *testing.T) {
	intake := NewProposalIntake(nil,
		fakeVendors{"bids@globex.example": {ID: 2}},
		&fakeRFPs{err: errors.New("timeout")}, &fakeProposals{}, nil, nil)

	outcome, err := intake.ProcessMessage(context.Background(), InboundMessage{
		From: "bids@globex.example", Subject: "[RFP-1]", Body: "Price 700",
	})

	require.Error(t, err)
	assert.Equal(t, OutcomeError, outcome)
}

func TestPoll_CountsOutcomes(t *testing.T) {
	source := &fakeSource{messages: []InboundMessage{
		{From: "sales@acme.example", Subject: "a", Body: "Price 100"},
		{From: "sales@acme.example", Subject: "b", Body: "Price 100"},
		{From: "stranger@example.com", Subject: "c", Body: "Price 1"},
		{From: "bids@globex.example", Subject: "d", Body: "Price 200"},
	}}
	proposals := &fakeProposals{}
	metrics := NewMetrics(prometheus.NewRegistry())
	intake := newTestIntake(source, proposals, metrics)

	stats, err := intake.Poll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, IntakeStats{Total: 4, New: 2, Skipped: 1, Unmatched: 1}, *stats)
	assert.Equal(t, []string{"a", "b", "c", "d"}, source.handled)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.InboxMessages.WithLabelValues(OutcomeNew)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.InboxMessages.WithLabelValues(OutcomeSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.InboxMessages.WithLabelValues(OutcomeUnmatched)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ProposalsParsed.WithLabelValues(SourceInbox)))
}

func TestPoll_FailedMessagesStayUnhandled(t *testing.T) {
	source := &fakeSource{messages: []InboundMessage{
		{From: "sales@acme.example", Subject: "a", Body: "Price 100"},
	}}
	intake := newTestIntake(source, &fakeProposals{err: errors.New("db down")}, nil)

	stats, err := intake.Poll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Empty(t, source.handled)
}

func TestPoll_SourceError(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("login failed")}
	intake := newTestIntake(source, &fakeProposals{}, nil)

	stats, err := intake.Poll(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")
	assert.NotNil(t, stats)
}

func TestPoll_NoSource(t *testing.T) {
	intake := newTestIntake(nil, &fakeProposals{}, nil)

	_, err := intake.Poll(context.Background())

	assert.ErrorIs(t, err, ErrNoMessageSource)
}

func TestSubmit_NormalizesAndParses(t *testing.T) {
	proposals := &fakeProposals{}
	metrics := NewMetrics(prometheus.NewRegistry())
	intake := newTestIntake(nil, proposals, metrics)
	vendor := models.Vendor{ID: 1, Name: "Acme Infosys", Email: " Sales@Acme.example "}

	stored, created, err := intake.Submit(context.Background(), vendor, 3, "Price: 5,000\r\nSupport: 1 year\r\n")

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Price: 5,000\nSupport: 1 year\n", stored.ContentRaw)
	assert.Equal(t, "Price: 5,000", stored.ParsedJSON.Pricing)
	assert.Equal(t, "Support: 1 year", stored.ParsedJSON.Terms)
	assert.Equal(t, "sales@acme.example", stored.ParsedJSON.Email)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProposalsParsed.WithLabelValues(SourceManual)))
}

func TestComputeContentHash(t *testing.T) {
	assert.Equal(t, ComputeContentHash("abc"), ComputeContentHash("abc"))
	assert.NotEqual(t, ComputeContentHash("abc"), ComputeContentHash("abd"))
	assert.Len(t, ComputeContentHash(""), 64)
}
