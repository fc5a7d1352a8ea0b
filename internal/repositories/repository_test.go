package repositories

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"rfpdesk/api/internal/models"
)

func TestRFPTitle(t *testing.T) {
	assert.Equal(t, "Portal", RFPTitle("anything", models.StructuredRFP{Title: "Portal"}))
	assert.Equal(t, "...", RFPTitle("", models.StructuredRFP{}))

	long := strings.Repeat("é", 70)
	assert.Equal(t, strings.Repeat("é", 60)+"...", RFPTitle(long, models.StructuredRFP{}))
}

func TestListParamsNormalize(t *testing.T) {
	assert.Equal(t, ListParams{Limit: 100, Offset: 0}, ListParams{}.normalize())
	assert.Equal(t, ListParams{Limit: 500, Offset: 0}, ListParams{Limit: 10000, Offset: -3}.normalize())
	assert.Equal(t, ListParams{Limit: 5, Offset: 10}, ListParams{Limit: 5, Offset: 10}.normalize())
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(pgx.ErrNoRows, "rfp"), ErrNotFound)
	assert.ErrorIs(t, notFound(fmt.Errorf("scan: %w", pgx.ErrNoRows), "rfp"), ErrNotFound)

	boom := errors.New("boom")
	err := notFound(boom, "rfp")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "failed to get rfp")
}

func TestSchemaOrder(t *testing.T) {
	var names []string
	for _, stmt := range schemaStatements {
		names = append(names, stmt.name)
	}
	// proposal references rfp and vendor, so both must exist first
	assert.Less(t, indexOf(names, "rfp table"), indexOf(names, "proposal table"))
	assert.Less(t, indexOf(names, "vendor table"), indexOf(names, "proposal table"))
}

func indexOf(items []string, want string) int {
	for i, item := range items {
		if item == want {
			return i
		}
	}
	return -1
}
