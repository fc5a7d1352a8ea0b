package handlers

import (
	"context"
	"errors"
	"net/http"

	"rfpdesk/api/internal/models"
	"rfpdesk/api/internal/repositories"
)

type Comparer interface {
	Compare(ctx context.Context, rfpID int) (*models.ComparisonReport, error)
}

type CompareHandler struct {
	svc Comparer
}

func NewCompareHandler(svc Comparer) *CompareHandler {
	return &CompareHandler{svc: svc}
}

// HandleCompare handles GET /compare/{rfp_id}
func (h *CompareHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rfpID, ok := pathID(r.URL.Path, "/compare/")
	if !ok {
		writeError(w, http.StatusBadRequest, "valid rfp id is required")
		return
	}

	report, err := h.svc.Compare(r.Context(), rfpID)
	if errors.Is(err, repositories.ErrNotFound) {
		writeError(w, http.StatusNotFound, "rfp not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, report)
}
