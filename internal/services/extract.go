package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Compiled regex patterns (reused across calls)
var (
	// Any decimal digit, so Devanagari and other native numerals count
	digitRunPattern = regexp.MustCompile(`\p{Nd}+`)
)

// isSpace matches the whitespace set used for trimming and word splitting,
// which includes the \x1c-\x1f separators.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// digitValue returns the 0-9 value of a decimal digit rune.
// Decimal digits come in contiguous blocks of ten starting at zero, and the
// unicode.Nd ranges begin on a block's zero.
func digitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	for _, rg := range unicode.Nd.R16 {
		if rg.Stride == 1 && r >= rune(rg.Lo) && r <= rune(rg.Hi) {
			return int(r-rune(rg.Lo)) % 10, true
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if rg.Stride == 1 && r >= rune(rg.Lo) && r <= rune(rg.Hi) {
			return int(r-rune(rg.Lo)) % 10, true
		}
	}
	return 0, false
}

const (
	// titleFallbackChars is how much raw text becomes the title when no line has content
	titleFallbackChars = 60
	// defaultVendorName is returned when a reply has no usable token at all
	defaultVendorName = "Vendor"
)

// defaultDeliverables is what every RFP is assumed to deliver
var defaultDeliverables = []string{"Project Plan", "Source Code", "Deployment", "Documentation"}

// splitLines splits text on every universal line boundary (\n, \r\n, \r, \v, \f,
// \x1c-\x1e, NEL, LS, PS). A trailing boundary does not produce an empty last line.
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch r {
		case '\r':
			lines = append(lines, text[start:i])
			i += size
			if i < len(text) && text[i] == '\n' {
				i++
			}
			start = i
			continue
		case '\n', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			lines = append(lines, text[start:i])
			i += size
			start = i
			continue
		}
		i += size
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

// truncateRunes returns at most n characters of s
func truncateRunes(s string, n int) string {
	count := 0
	for pos := range s {
		if count == n {
			return s[:pos]
		}
		count++
	}
	return s
}

// FirstNonEmptyLine returns the first line with content, trimmed.
// If every line is blank it falls back to the first 60 characters of the raw text.
func FirstNonEmptyLine(text string) string {
	for _, line := range splitLines(text) {
		if s := trimSpace(line); s != "" {
			return s
		}
	}
	return truncateRunes(text, titleFallbackChars)
}

// ExtractLine returns the first line (trimmed, original casing) whose lower-cased
// form contains any of the keywords, or "" when nothing matches.
func ExtractLine(text string, keywords []string) string {
	for _, line := range splitLines(text) {
		lower := strings.ToLower(line)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return trimSpace(line)
			}
		}
	}
	return ""
}

// isBulletLine reports whether a trimmed line starts with a dash or bullet marker
func isBulletLine(s string) bool {
	return strings.HasPrefix(s, "-") || strings.HasPrefix(s, "•")
}

// ExtractList collects requirement-like lines in order.
// Bullet lines are always kept with their markers stripped; other lines are
// kept verbatim when they mention one of the keywords. Each line appears at most once.
func ExtractList(text string, keywords []string) []string {
	out := []string{}
	for _, line := range splitLines(text) {
		s := trimSpace(line)
		if s == "" {
			continue
		}
		if isBulletLine(s) {
			out = append(out, trimSpace(strings.TrimLeft(s, "-• ")))
			continue
		}
		low := strings.ToLower(s)
		for _, k := range keywords {
			if strings.Contains(low, k) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// InferDeliverables returns the standard deliverables.
// The requirements are not consulted yet; every RFP gets the same list.
func InferDeliverables(requirements []string) []string {
	deliverables := make([]string, len(defaultDeliverables))
	copy(deliverables, defaultDeliverables)
	return deliverables
}

// GuessVendorName looks for a "From:" line and returns what follows the colon.
// Otherwise it returns the first word of the text, or "Vendor" for blank text.
func GuessVendorName(text string) string {
	for _, line := range splitLines(text) {
		ln := trimSpace(line)
		if strings.HasPrefix(strings.ToLower(ln), "from:") {
			_, after, _ := strings.Cut(ln, ":")
			return trimSpace(after)
		}
	}
	parts := strings.FieldsFunc(text, isSpace)
	if len(parts) == 0 {
		return defaultVendorName
	}
	return parts[0]
}

// ExtractPriceNumber returns the first run of decimal digits in text after removing
// commas, so "Rs 4,00,000" and "₹४,००,०००" are both 400000. ok is false when there is no price
// (empty text, no digits, or a run too large for int64).
// Decimals are not understood: "3.5 lakh" yields 3.
func ExtractPriceNumber(text string) (price int64, ok bool) {
	if text == "" {
		return 0, false
	}
	clean := strings.ReplaceAll(text, ",", "")
	run := digitRunPattern.FindString(clean)
	if run == "" {
		return 0, false
	}
	ascii := make([]byte, 0, len(run))
	for _, r := range run {
		d, ok := digitValue(r)
		if !ok {
			return 0, false
		}
		ascii = append(ascii, byte('0'+d))
	}
	n, err := strconv.ParseInt(string(ascii), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
