package services

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// Compiled regex patterns for HTML bodies
var (
	scriptStylePattern = regexp.MustCompile(`(?is)<(script|style|head)[^>]*>.*?</(script|style|head)>`)
	htmlTagPattern     = regexp.MustCompile(`<[^>]*>`)
	// Tags that end a visual line
	lineBreakTagPattern = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/tr|/h[1-6]|/blockquote)\s*/?\s*>`)
	// List items become bullet lines so ExtractList keeps them
	listItemTagPattern = regexp.MustCompile(`(?i)<\s*li(\s[^>]*)?>`)
	// Pattern to match punctuation followed by HTML entities like .&nbsp;, ,&nbsp;, ;&nbsp;, etc.
	punctuationEntityPattern = regexp.MustCompile(`([.,;:!?])(&nbsp;|&ensp;|&emsp;|&thinsp;)`)
	spacePattern             = regexp.MustCompile(`[ \t\x{00a0}]{2,}`)
	// Bodies sent as whole pages (templates with headers and footers)
	fullDocumentPattern = regexp.MustCompile(`(?i)<\s*(html|body)[\s>]`)
)

// readabilityBase is the page URL handed to readability; mail bodies have none
var readabilityBase = &url.URL{Scheme: "https", Host: "mail.invalid"}

// NormalizeRaw converts \r\n and stray \r to \n and trims trailing whitespace per line
func NormalizeRaw(rawText string) string {
	normalized := strings.ReplaceAll(rawText, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	lines := strings.Split(normalized, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

// stripHTML turns an HTML fragment into plain text, one visual line per text line.
func stripHTML(body string) string {
	text := scriptStylePattern.ReplaceAllString(body, " ")
	text = listItemTagPattern.ReplaceAllString(text, "\n- ")
	text = lineBreakTagPattern.ReplaceAllString(text, "\n")
	text = htmlTagPattern.ReplaceAllString(text, " ")
	text = punctuationEntityPattern.ReplaceAllString(text, "$1 ")
	text = html.UnescapeString(text)
	text = NormalizeRaw(text)

	lines := strings.Split(text, "\n")
	var processed []string
	blankLineCount := 0
	for _, line := range lines {
		cleaned := strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
		if cleaned == "" {
			blankLineCount++
			// Collapse 2+ blank lines to 1
			if blankLineCount <= 1 {
				processed = append(processed, "")
			}
			continue
		}
		blankLineCount = 0
		processed = append(processed, cleaned)
	}
	return strings.TrimSpace(strings.Join(processed, "\n"))
}

// HTMLToText converts an HTML mail body to line-oriented plain text.
// Whole-page bodies go through readability first to drop template chrome;
// if that leaves nothing the entire body is stripped instead.
func HTMLToText(body string) string {
	if fullDocumentPattern.MatchString(body) {
		article, err := readability.FromReader(strings.NewReader(body), readabilityBase)
		if err == nil {
			if text := stripHTML(article.Content); text != "" {
				return text
			}
		}
	}
	return stripHTML(body)
}
