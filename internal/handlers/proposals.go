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

type ProposalReader interface {
	ListProposalsForRFP(ctx context.Context, rfpID int) ([]models.Proposal, error)
}

type VendorGetter interface {
	GetVendor(ctx context.Context, id int) (*models.Vendor, error)
}

type ProposalSubmitter interface {
	Submit(ctx context.Context, vendor models.Vendor, rfpID int, text string) (*models.Proposal, bool, error)
}

type ProposalsHandler struct {
	proposals ProposalReader
	vendors   VendorGetter
	rfps      RFPGetter
	intake    ProposalSubmitter
	logger    *zap.Logger
}

func NewProposalsHandler(proposals ProposalReader, vendors VendorGetter, rfps RFPGetter, intake ProposalSubmitter, logger *zap.Logger) *ProposalsHandler {
	return &ProposalsHandler{
		proposals: proposals,
		vendors:   vendors,
		rfps:      rfps,
		intake:    intake,
		logger:    logging.OrNop(logger),
	}
}

// HandleListProposals handles GET /proposals/{rfp_id}
func (h *ProposalsHandler) HandleListProposals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rfpID, ok := pathID(r.URL.Path, "/proposals/")
	if !ok {
		writeError(w, http.StatusBadRequest, "valid rfp id is required")
		return
	}
	if !h.rfpExists(w, r, rfpID) {
		return
	}

	proposals, err := h.proposals.ListProposalsForRFP(r.Context(), rfpID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if proposals == nil {
		proposals = []models.Proposal{}
	}
	WriteJSON(w, http.StatusOK, proposals)
}

// HandleSubmitProposal handles POST /proposals with a reply pasted by hand
func (h *ProposalsHandler) HandleSubmitProposal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var body models.ProposalCreate
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	vendor, err := h.vendors.GetVendor(r.Context(), body.VendorID)
	if errors.Is(err, repositories.ErrNotFound) {
		writeError(w, http.StatusNotFound, "vendor not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !h.rfpExists(w, r, body.RFPID) {
		return
	}

	proposal, created, err := h.intake.Submit(r.Context(), *vendor, body.RFPID, body.Text)
	if err != nil {
		h.logger.Error("submit proposal failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	WriteJSON(w, status, map[string]any{"proposal": proposal, "created": created})
}

func (h *ProposalsHandler) rfpExists(w http.ResponseWriter, r *http.Request, id int) bool {
	_, err := h.rfps.GetRFP(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		writeError(w, http.StatusNotFound, "rfp not found")
		return false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return false
	}
	return true
}
