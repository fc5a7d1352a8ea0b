package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"
	"rfpdesk/api/internal/logging"
	"rfpdesk/api/internal/models"
	"rfpdesk/api/internal/repositories"
)

const sendTimeout = 2 * time.Minute

type VendorStore interface {
	CreateVendor(ctx context.Context, name, email string) (*models.Vendor, error)
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	GetVendorsByIDs(ctx context.Context, ids []int) ([]models.Vendor, error)
}

type RFPGetter interface {
	GetRFP(ctx context.Context, id int) (*models.RFP, error)
}

type RFPSender interface {
	SendRFP(ctx context.Context, to string, rfp models.RFP) error
}

type VendorsHandler struct {
	vendors VendorStore
	rfps    RFPGetter
	sender  RFPSender // nil when SMTP is not configured
	logger  *zap.Logger

	sends sync.WaitGroup
}

func NewVendorsHandler(vendors VendorStore, rfps RFPGetter, sender RFPSender, logger *zap.Logger) *VendorsHandler {
	return &VendorsHandler{
		vendors: vendors,
		rfps:    rfps,
		sender:  sender,
		logger:  logging.OrNop(logger),
	}
}

// HandleVendors handles POST /vendors and GET /vendors
func (h *VendorsHandler) HandleVendors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		vendors, err := h.vendors.ListVendors(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if vendors == nil {
			vendors = []models.Vendor{}
		}
		WriteJSON(w, http.StatusOK, vendors)
	default:
		methodNotAllowed(w)
	}
}

func (h *VendorsHandler) create(w http.ResponseWriter, r *http.Request) {
	var body models.VendorCreate
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if strings.TrimSpace(body.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	addr, err := mail.ParseAddress(body.Email)
	if err != nil {
		writeError(w, http.StatusBadRequest, "email is not a valid address")
		return
	}

	vendor, err := h.vendors.CreateVendor(r.Context(), name, addr.Address)
	if err != nil {
		h.logger.Error("create vendor failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"vendor": vendor})
}

// HandleSendRFP handles POST /vendors/send-rfp.
// Mail goes out in the background; the response lists the addresses queued.
func (h *VendorsHandler) HandleSendRFP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var body models.SendRFPBody
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(body.VendorIDs) == 0 {
		writeError(w, http.StatusBadRequest, "vendor_ids is required")
		return
	}
	if h.sender == nil {
		writeError(w, http.StatusServiceUnavailable, "smtp is not configured")
		return
	}

	rfp, err := h.rfps.GetRFP(r.Context(), body.RFPID)
	if errors.Is(err, repositories.ErrNotFound) {
		writeError(w, http.StatusNotFound, "rfp not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	vendors, err := h.vendors.GetVendorsByIDs(r.Context(), body.VendorIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(vendors) == 0 {
		writeError(w, http.StatusNotFound, "no vendors found")
		return
	}

	sentTo := make([]string, 0, len(vendors))
	for _, v := range vendors {
		sentTo = append(sentTo, v.Email)
		h.sends.Add(1)
		go h.send(v, *rfp)
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "sent_to": sentTo})
}

func (h *VendorsHandler) send(v models.Vendor, rfp models.RFP) {
	defer h.sends.Done()

	// detached from the request, which has already been answered
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := h.sender.SendRFP(ctx, v.Email, rfp); err != nil {
		h.logger.Error("background rfp send failed",
			zap.Int("vendor_id", v.ID), zap.Int("rfp_id", rfp.ID), zap.Error(err))
	}
}

// Wait blocks until every queued send has finished.
func (h *VendorsHandler) Wait() {
	h.sends.Wait()
}
