package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"rfpdesk/api/internal/logging"
	"rfpdesk/api/internal/models"
	"rfpdesk/api/internal/repositories"
)

type RFPCreator interface {
	CreateRFP(ctx context.Context, text string) (*models.RFP, error)
}

type RFPReader interface {
	ListRFPs(ctx context.Context, params repositories.ListParams) ([]models.RFP, error)
	GetRFP(ctx context.Context, id int) (*models.RFP, error)
}

type RFPHandler struct {
	svc    RFPCreator
	repo   RFPReader
	logger *zap.Logger
}

func NewRFPHandler(svc RFPCreator, repo RFPReader, logger *zap.Logger) *RFPHandler {
	return &RFPHandler{svc: svc, repo: repo, logger: logging.OrNop(logger)}
}

// HandleRFPs handles POST /rfp and GET /rfp
func (h *RFPHandler) HandleRFPs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *RFPHandler) create(w http.ResponseWriter, r *http.Request) {
	var body models.RFPCreate
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	rfp, err := h.svc.CreateRFP(r.Context(), body.Text)
	if err != nil {
		h.logger.Error("create rfp failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"rfp": rfp})
}

func (h *RFPHandler) list(w http.ResponseWriter, r *http.Request) {
	params := repositories.ListParams{
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	}
	rfps, err := h.repo.ListRFPs(r.Context(), params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rfps == nil {
		rfps = []models.RFP{}
	}
	WriteJSON(w, http.StatusOK, rfps)
}

// HandleGetRFP handles GET /rfp/{id}
func (h *RFPHandler) HandleGetRFP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id, ok := pathID(r.URL.Path, "/rfp/")
	if !ok {
		writeError(w, http.StatusBadRequest, "valid rfp id is required")
		return
	}

	rfp, err := h.repo.GetRFP(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		writeError(w, http.StatusNotFound, "rfp not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, rfp)
}
