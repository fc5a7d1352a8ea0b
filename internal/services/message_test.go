package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crlf(lines ...string) string {
	return strings.Join(lines, "\r\n")
}

func TestParseMessage_PlainText(t *testing.T) {
	raw := crlf(
		`From: "Acme Sales" <Sales@Acme.example>`,
		"To: rfp@buyer.example",
		"Subject: Re: RFP: Laptop refresh [RFP-7]",
		"Message-ID: <abc123@acme.example>",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Price: Rs 4,00,000   ",
		"Timeline: 3 weeks",
		"",
	)

	msg, err := ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "sales@acme.example", msg.From)
	assert.Equal(t, "Acme Sales", msg.FromName)
	assert.Equal(t, "Re: RFP: Laptop refresh [RFP-7]", msg.Subject)
	assert.Equal(t, "abc123@acme.example", msg.MessageID)
	assert.Equal(t, "Price: Rs 4,00,000\nTimeline: 3 weeks\n", msg.Body)
	assert.NotContains(t, msg.Body, "\r")
}

func TestParseMessage_PrefersPlainAlternative(t *testing.T) {
	raw := crlf(
		"From: vendor@example.com",
		"Subject: quote",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="b1"`,
		"",
		"--b1",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Cost: 1200",
		"--b1",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>Cost: <b>9999</b></p>",
		"--b1--",
		"",
	)

	msg, err := ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "vendor@example.com", msg.From)
	assert.Contains(t, msg.Body, "Cost: 1200")
	assert.NotContains(t, msg.Body, "9999")
}

func TestParseMessage_HTMLOnly(t *testing.T) {
	raw := crlf(
		"From: vendor@example.com",
		"Subject: quote",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>Price: $900 &amp; taxes</p><ul><li>Support for 1 year</li></ul>",
		"",
	)

	msg, err := ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Contains(t, msg.Body, "Price: $900 & taxes")
	assert.Contains(t, msg.Body, "- Support for 1 year")
	assert.NotContains(t, msg.Body, "<")
}

func TestParseMessage_SkipsAttachments(t *testing.T) {
	raw := crlf(
		"From: vendor@example.com",
		"Subject: quote",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="b2"`,
		"",
		"--b2",
		"Content-Type: text/plain; charset=utf-8",
		`Content-Disposition: attachment; filename="terms.txt"`,
		"",
		"Price: 1",
		"--b2",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Price: 50000",
		"--b2--",
		"",
	)

	msg, err := ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Contains(t, msg.Body, "Price: 50000")
	assert.NotContains(t, msg.Body, "Price: 1\n")
}

func TestRFPReference(t *testing.T) {
	tests := []struct {
		subject string
		want    int
		ok      bool
	}{
		{"Re: RFP: Laptop refresh [RFP-12]", 12, true},
		{"re: [rfp-3] quote", 3, true},
		{"RFP: no token", 0, false},
		{"[RFP-0]", 0, false},
		{"[RFP-]", 0, false},
		{"[RFP-99999999999999999999]", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			got, ok := RFPReference(tt.subject)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
