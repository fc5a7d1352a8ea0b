package handlers

import (
	"net/http"
)

// Router holds the handlers mounted by NewRouter. Metrics may be nil.
type Router struct {
	RFPs      *RFPHandler
	Vendors   *VendorsHandler
	Proposals *ProposalsHandler
	Compare   *CompareHandler
	Inbox     *InboxHandler
	Metrics   http.Handler
}

// NewRouter registers every route on a ServeMux and wraps it with CORS.
func NewRouter(rt Router) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	if rt.Metrics != nil {
		mux.Handle("/metrics", rt.Metrics)
	}

	// Note: exact paths take precedence over the trailing-slash subtrees
	mux.HandleFunc("/rfp", rt.RFPs.HandleRFPs)
	mux.HandleFunc("/rfp/", rt.RFPs.HandleGetRFP)

	mux.HandleFunc("/vendors", rt.Vendors.HandleVendors)
	mux.HandleFunc("/vendors/send-rfp", rt.Vendors.HandleSendRFP)

	mux.HandleFunc("/proposals", rt.Proposals.HandleSubmitProposal)
	mux.HandleFunc("/proposals/", rt.Proposals.HandleListProposals)

	mux.HandleFunc("/compare/", rt.Compare.HandleCompare)
	mux.HandleFunc("/inbox/poll", rt.Inbox.HandlePoll)

	return corsMiddleware(mux)
}

// corsMiddleware adds CORS headers for the browser frontend
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
