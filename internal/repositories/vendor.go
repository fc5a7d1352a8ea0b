package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"rfpdesk/api/internal/models"
)

type VendorRepository struct {
	db *pgxpool.Pool
}

func NewVendorRepository(db *pgxpool.Pool) *VendorRepository {
	return &VendorRepository{db: db}
}

func (r *VendorRepository) CreateVendor(ctx context.Context, name, email string) (*models.Vendor, error) {
	var v models.Vendor
	err := r.db.QueryRow(ctx, `
		INSERT INTO vendor (name, email)
		VALUES ($1, $2)
		RETURNING id, name, email, created_at
	`, strings.TrimSpace(name), strings.TrimSpace(email)).Scan(&v.ID, &v.Name, &v.Email, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert vendor: %w", err)
	}
	return &v, nil
}

func (r *VendorRepository) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, email, created_at FROM vendor ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	return collectVendors(rows)
}

func (r *VendorRepository) GetVendor(ctx context.Context, id int) (*models.Vendor, error) {
	var v models.Vendor
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, created_at FROM vendor WHERE id = $1
	`, id).Scan(&v.ID, &v.Name, &v.Email, &v.CreatedAt)
	if err != nil {
		return nil, notFound(err, "vendor")
	}
	return &v, nil
}

// GetVendorsByIDs returns the vendors that exist among ids; unknown ids are skipped.
func (r *VendorRepository) GetVendorsByIDs(ctx context.Context, ids []int) ([]models.Vendor, error) {
	if len(ids) == 0 {
		return []models.Vendor{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, name, email, created_at
		FROM vendor
		WHERE id = ANY($1)
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors by id: %w", err)
	}
	return collectVendors(rows)
}

// GetVendorByEmail matches the sender of an inbound reply, case-insensitively.
// When several vendors share an address the oldest wins.
func (r *VendorRepository) GetVendorByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	var v models.Vendor
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, created_at
		FROM vendor
		WHERE lower(email) = lower($1)
		ORDER BY id
		LIMIT 1
	`, strings.TrimSpace(email)).Scan(&v.ID, &v.Name, &v.Email, &v.CreatedAt)
	if err != nil {
		return nil, notFound(err, "vendor")
	}
	return &v, nil
}

func collectVendors(rows pgx.Rows) ([]models.Vendor, error) {
	defer rows.Close()

	vendors := []models.Vendor{}
	for rows.Next() {
		var v models.Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Email, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vendors: %w", err)
	}
	return vendors, nil
}
