package handlers

import (
	"context"
	"errors"
	"net/http"

	"rfpdesk/api/internal/services"
)

// PollRunner runs one inbox poll; nil stats means another poll holds the lock.
type PollRunner interface {
	RunOnce(ctx context.Context) (*services.IntakeStats, error)
}

type InboxHandler struct {
	poller PollRunner
}

func NewInboxHandler(poller PollRunner) *InboxHandler {
	return &InboxHandler{poller: poller}
}

// HandlePoll handles POST /inbox/poll
func (h *InboxHandler) HandlePoll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if h.poller == nil {
		writeError(w, http.StatusServiceUnavailable, "imap is not configured")
		return
	}

	stats, err := h.poller.RunOnce(r.Context())
	if errors.Is(err, services.ErrNoMessageSource) {
		writeError(w, http.StatusServiceUnavailable, "imap is not configured")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if stats == nil {
		writeError(w, http.StatusConflict, "an inbox poll is already running")
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
