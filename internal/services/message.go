package services

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// InboundMessage is a vendor reply reduced to what intake needs.
type InboundMessage struct {
	SeqNum    uint32
	MessageID string
	From      string // bare sender address
	FromName  string
	Subject   string
	Body      string // plain text, \n line endings
}

// rfpReferencePattern matches the reference token outbound RFP subjects carry, e.g. "[RFP-12]"
var rfpReferencePattern = regexp.MustCompile(`(?i)\[RFP-(\d+)\]`)

// RFPReference returns the RFP id quoted in a subject line, if any.
func RFPReference(subject string) (int, bool) {
	m := rfpReferencePattern.FindStringSubmatch(subject)
	if len(m) < 2 {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ParseMessage reads an RFC 5322 message and extracts sender, subject and body text.
// The first inline text/plain part is the body; an HTML-only message is converted to text.
func ParseMessage(r io.Reader) (InboundMessage, error) {
	var msg InboundMessage

	mr, err := mail.CreateReader(r)
	if mr == nil {
		return msg, fmt.Errorf("failed to read message: %w", err)
	}
	defer mr.Close()

	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = strings.ToLower(strings.TrimSpace(from[0].Address))
		msg.FromName = strings.TrimSpace(from[0].Name)
	}
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	}
	if id, err := mr.Header.MessageID(); err == nil {
		msg.MessageID = id
	}

	var plain, htmlBody string
	for plain == "" {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return msg, fmt.Errorf("failed to read message part: %w", err)
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			// attachments are never proposal text
			continue
		}
		contentType, _, _ := h.ContentType()
		switch contentType {
		case "text/plain", "":
			b, err := io.ReadAll(p.Body)
			if err != nil {
				return msg, fmt.Errorf("failed to read text part: %w", err)
			}
			plain = string(b)
		case "text/html":
			if htmlBody != "" {
				continue
			}
			b, err := io.ReadAll(p.Body)
			if err != nil {
				return msg, fmt.Errorf("failed to read html part: %w", err)
			}
			htmlBody = string(b)
		}
	}

	switch {
	case plain != "":
		msg.Body = NormalizeRaw(plain)
	case htmlBody != "":
		msg.Body = HTMLToText(htmlBody)
	}
	return msg, nil
}
