package services

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"rfpdesk/api/internal/logging"
	"rfpdesk/api/internal/models"
)

// SendFunc matches smtp.SendMail
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends RFPs to vendors over SMTP.
type Mailer struct {
	addr    string
	host    string
	user    string
	pass    string
	from    string
	send    SendFunc
	now     func() time.Time
	logger  *zap.Logger
	metrics *Metrics
}

// NewMailer creates a Mailer for the SMTP server at addr (host:port).
// smtp.SendMail upgrades with STARTTLS when the server offers it.
func NewMailer(addr, user, pass, from string, logger *zap.Logger, metrics *Metrics) *Mailer {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	return &Mailer{
		addr:    addr,
		host:    host,
		user:    user,
		pass:    pass,
		from:    from,
		send:    smtp.SendMail,
		now:     time.Now,
		logger:  logging.OrNop(logger),
		metrics: metrics,
	}
}

// RenderRFPEmail builds the subject and plain-text body sent to vendors.
// The subject carries an [RFP-<id>] token so replies can be matched to the RFP.
func RenderRFPEmail(rfp models.RFP) (subject, body string) {
	s := rfp.StructuredJSON
	title := s.Title
	if title == "" {
		title = rfp.Title
	}
	subject = fmt.Sprintf("RFP: %s [RFP-%d]", title, rfp.ID)

	var b strings.Builder
	b.WriteString("Please find RFP below:\n\n")
	fmt.Fprintf(&b, "Title: %s\n", title)
	if s.Budget != "" {
		fmt.Fprintf(&b, "%s\n", s.Budget)
	}
	if s.Timeline != "" {
		fmt.Fprintf(&b, "%s\n", s.Timeline)
	}
	writeList(&b, "Requirements", s.Requirements)
	writeList(&b, "Deliverables", s.Deliverables)
	if desc := strings.TrimSpace(s.Description); desc != "" {
		fmt.Fprintf(&b, "\nFull description:\n%s\n", desc)
	}
	b.WriteString("\nPlease reply to this email with your price, timeline, technical approach and terms.\n")
	return subject, b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

// buildMessage renders an RFC 5322 message and returns it with its Message-ID.
func (m *Mailer) buildMessage(to, subject, body string) ([]byte, string, error) {
	domain := "localhost"
	if at := strings.LastIndex(m.from, "@"); at >= 0 && at < len(m.from)-1 {
		domain = m.from[at+1:]
	}
	messageID := fmt.Sprintf("%s@%s", ulid.Make().String(), domain)

	var h mail.Header
	h.SetDate(m.now())
	h.SetAddressList("From", []*mail.Address{{Address: m.from}})
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	h.SetSubject(subject)
	h.SetMessageID(messageID)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create message writer: %w", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		return nil, "", fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish message: %w", err)
	}
	return buf.Bytes(), messageID, nil
}

// SendRFP mails the rendered RFP to one vendor address.
func (m *Mailer) SendRFP(ctx context.Context, to string, rfp models.RFP) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject, body := RenderRFPEmail(rfp)
	msg, messageID, err := m.buildMessage(to, subject, body)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	if err := m.send(m.addr, auth, m.from, []string{to}, msg); err != nil {
		m.metrics.rfpEmail("failed")
		return fmt.Errorf("failed to send rfp %d to %s: %w", rfp.ID, to, err)
	}
	m.metrics.rfpEmail("sent")
	m.logger.Info("sent rfp",
		zap.Int("rfp_id", rfp.ID), zap.String("to", to), zap.String("message_id", messageID))
	return nil
}
