package services

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts pipeline activity. A nil *Metrics records nothing.
type Metrics struct {
	RFPsStructured  prometheus.Counter
	ProposalsParsed *prometheus.CounterVec
	InboxMessages   *prometheus.CounterVec
	Comparisons     prometheus.Counter
	RFPEmailsSent   *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg when reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RFPsStructured: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rfpdesk_rfps_structured_total",
			Help: "RFPs structured from free text.",
		}),
		ProposalsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rfpdesk_proposals_parsed_total",
			Help: "Vendor replies parsed into proposals, by source.",
		}, []string{"source"}),
		InboxMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rfpdesk_inbox_messages_total",
			Help: "Inbound messages handled by the inbox poller, by outcome.",
		}, []string{"outcome"}),
		Comparisons: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rfpdesk_comparisons_total",
			Help: "Proposal comparisons run.",
		}),
		RFPEmailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rfpdesk_rfp_emails_sent_total",
			Help: "RFP emails sent to vendors, by status.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(m.RFPsStructured, m.ProposalsParsed, m.InboxMessages, m.Comparisons, m.RFPEmailsSent)
	}
	return m
}

func (m *Metrics) rfpStructured() {
	if m != nil {
		m.RFPsStructured.Inc()
	}
}

func (m *Metrics) proposalParsed(source string) {
	if m != nil {
		m.ProposalsParsed.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) inboxMessage(outcome string) {
	if m != nil {
		m.InboxMessages.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) comparison() {
	if m != nil {
		m.Comparisons.Inc()
	}
}

func (m *Metrics) rfpEmail(status string) {
	if m != nil {
		m.RFPEmailsSent.WithLabelValues(status).Inc()
	}
}
