package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"rfpdesk/api/internal/models"
)

type RFPRepository struct {
	db *pgxpool.Pool
}

func NewRFPRepository(db *pgxpool.Pool) *RFPRepository {
	return &RFPRepository{db: db}
}

const rfpColumns = `id, title, raw_input, structured_json, created_at`

// RFPTitle picks the stored title: the structured title, or the first 60
// characters of the raw input with an ellipsis when the structured title is empty.
func RFPTitle(rawInput string, structured models.StructuredRFP) string {
	if structured.Title != "" {
		return structured.Title
	}
	runes := []rune(rawInput)
	if len(runes) > 60 {
		runes = runes[:60]
	}
	return string(runes) + "..."
}

// CreateRFP stores the raw input together with its structured record
func (r *RFPRepository) CreateRFP(ctx context.Context, rawInput string, structured models.StructuredRFP) (*models.RFP, error) {
	structuredJSON, err := json.Marshal(structured)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal structured_json: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO rfp (title, raw_input, structured_json)
		VALUES ($1, $2, $3)
		RETURNING `+rfpColumns,
		RFPTitle(rawInput, structured), rawInput, structuredJSON,
	)
	rfp, err := scanRFP(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert rfp: %w", err)
	}
	return rfp, nil
}

// ListRFPs returns RFPs oldest first.
func (r *RFPRepository) ListRFPs(ctx context.Context, params ListParams) ([]models.RFP, error) {
	params = params.normalize()

	rows, err := r.db.Query(ctx, `
		SELECT `+rfpColumns+`
		FROM rfp
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query rfps: %w", err)
	}
	defer rows.Close()

	rfps := []models.RFP{}
	for rows.Next() {
		rfp, err := scanRFP(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rfp: %w", err)
		}
		rfps = append(rfps, *rfp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rfps: %w", err)
	}
	return rfps, nil
}

// GetRFP retrieves a single RFP by id.
func (r *RFPRepository) GetRFP(ctx context.Context, id int) (*models.RFP, error) {
	row := r.db.QueryRow(ctx, `SELECT `+rfpColumns+` FROM rfp WHERE id = $1`, id)
	rfp, err := scanRFP(row)
	if err != nil {
		return nil, notFound(err, "rfp")
	}
	return rfp, nil
}

// GetLatestRFP returns the most recently created RFP.
// Inbound replies are attached to it when the reply does not say which RFP it answers.
func (r *RFPRepository) GetLatestRFP(ctx context.Context) (*models.RFP, error) {
	row := r.db.QueryRow(ctx, `SELECT `+rfpColumns+` FROM rfp ORDER BY id DESC LIMIT 1`)
	rfp, err := scanRFP(row)
	if err != nil {
		return nil, notFound(err, "latest rfp")
	}
	return rfp, nil
}

func scanRFP(row pgx.Row) (*models.RFP, error) {
	var rfp models.RFP
	var structuredJSON []byte
	if err := row.Scan(&rfp.ID, &rfp.Title, &rfp.RawInput, &structuredJSON, &rfp.CreatedAt); err != nil {
		return nil, err
	}
	if len(structuredJSON) > 0 {
		if err := json.Unmarshal(structuredJSON, &rfp.StructuredJSON); err != nil {
			return nil, fmt.Errorf("failed to unmarshal structured_json: %w", err)
		}
	}
	return &rfp, nil
}
