package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"rfpdesk/api/internal/models"
)

type ProposalRepository struct {
	db *pgxpool.Pool
}

func NewProposalRepository(db *pgxpool.Pool) *ProposalRepository {
	return &ProposalRepository{db: db}
}

const proposalColumns = `id, vendor_id, rfp_id, content_raw, parsed_json, content_hash, score, recommendation, created_at`

// CreateProposal stores a parsed vendor reply.
// If the same vendor already sent identical content for this RFP, nothing is inserted,
// the existing row is returned and created is false.
func (r *ProposalRepository) CreateProposal(ctx context.Context, p *models.Proposal) (stored *models.Proposal, created bool, err error) {
	parsedJSON, err := json.Marshal(p.ParsedJSON)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal parsed_json: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO proposal (vendor_id, rfp_id, content_raw, parsed_json, content_hash)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (rfp_id, vendor_id, content_hash) DO NOTHING
		RETURNING `+proposalColumns,
		p.VendorID, p.RFPID, p.ContentRaw, parsedJSON, p.ContentHash,
	)
	stored, err = scanProposal(row)
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to insert proposal: %w", err)
	}

	// Conflict: hash matches an existing proposal, skip
	row = r.db.QueryRow(ctx, `
		SELECT `+proposalColumns+`
		FROM proposal
		WHERE rfp_id = $1 AND vendor_id = $2 AND content_hash = $3
	`, p.RFPID, p.VendorID, p.ContentHash)
	stored, err = scanProposal(row)
	if err != nil {
		return nil, false, notFound(err, "existing proposal")
	}
	return stored, false, nil
}

// ListProposalsForRFP returns proposals in arrival order.
func (r *ProposalRepository) ListProposalsForRFP(ctx context.Context, rfpID int) ([]models.Proposal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+proposalColumns+`
		FROM proposal
		WHERE rfp_id = $1
		ORDER BY id
	`, rfpID)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}
	defer rows.Close()

	proposals := []models.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		proposals = append(proposals, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposals: %w", err)
	}
	return proposals, nil
}

// UpdateAssessment writes the comparator's verdict back onto a proposal.
// nil values clear the columns.
func (r *ProposalRepository) UpdateAssessment(ctx context.Context, id int, score *float64, recommendation *string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE proposal SET score = $2, recommendation = $3
		WHERE id = $1
	`, id, score, recommendation)
	if err != nil {
		return fmt.Errorf("failed to update proposal assessment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProposal(row pgx.Row) (*models.Proposal, error) {
	var p models.Proposal
	var parsedJSON []byte
	err := row.Scan(
		&p.ID, &p.VendorID, &p.RFPID, &p.ContentRaw, &parsedJSON,
		&p.ContentHash, &p.Score, &p.Recommendation, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(parsedJSON) > 0 {
		if err := json.Unmarshal(parsedJSON, &p.ParsedJSON); err != nil {
			return nil, fmt.Errorf("failed to unmarshal parsed_json: %w", err)
		}
	}
	return &p, nil
}
