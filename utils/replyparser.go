package utils

import (
	"regexp"
	"strings"
)

// UnparseableReplyPlaceholder is stored when an inbound email yields no
// usable text after extraction and carries no subject either.
const UnparseableReplyPlaceholder = "[Customer reply received - unable to display content]"

// Email clients do not agree on a machine-readable reply-delimiter
// standard, so the extractor works from an ordered list of textual
// markers. Each phase truncates at the earliest line matching any of its
// patterns; a body with no markers passes through untouched.

// quoteBoundaryPatterns match the first line of quoted thread history.
var quoteBoundaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^On .*wrote:\s*$`),            // "On Mon, Jan 5 ... Jane wrote:"
	regexp.MustCompile(`(?i)^-{3,}\s*Original Message`),   // "-----Original Message-----"
	regexp.MustCompile(`^_{3,}\s*$`),                      // Outlook-style divider
	regexp.MustCompile(`^\s*>+`),                          // quoted line markers
}

// signaturePatterns match standalone sign-off lines, optionally followed
// by a comma.
var signaturePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*sincerely,?\s*$`),
	regexp.MustCompile(`(?i)^\s*best regards,?\s*$`),
	regexp.MustCompile(`(?i)^\s*best,?\s*$`),
	regexp.MustCompile(`(?i)^\s*thanks,?\s*$`),
	regexp.MustCompile(`(?i)^\s*thank you,?\s*$`),
	regexp.MustCompile(`(?i)^\s*regards,?\s*$`),
	regexp.MustCompile(`(?i)^\s*cheers,?\s*$`),
	regexp.MustCompile(`(?i)^\s*sent from my`),
}

// ExtractReply trims a raw inbound email body down to the new content the
// sender actually typed, discarding quoted history and signature blocks.
// It never fails: a body with no recognizable markers is returned trimmed
// but otherwise untouched.
func ExtractReply(rawBody string) string {
	body := truncateAtFirstMatch(rawBody, quoteBoundaryPatterns)
	body = truncateAtFirstMatch(body, signaturePatterns)
	return strings.TrimSpace(body)
}

// ExtractReplyOrFallback applies ExtractReply and the empty-result
// fallback chain: extracted text, then the email subject, then a fixed
// placeholder so the thread still records that a reply arrived.
func ExtractReplyOrFallback(rawBody, subject string) string {
	if reply := ExtractReply(rawBody); reply != "" {
		return reply
	}
	if subject = strings.TrimSpace(subject); subject != "" {
		return subject
	}
	return UnparseableReplyPlaceholder
}

// truncateAtFirstMatch cuts the body at the start of the earliest line
// matching any of the given patterns.
func truncateAtFirstMatch(body string, patterns []*regexp.Regexp) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		for _, pattern := range patterns {
			if pattern.MatchString(strings.TrimRight(line, "\r")) {
				return strings.Join(lines[:i], "\n")
			}
		}
	}
	return body
}

var (
	htmlLineBreakPattern = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>`)
	htmlTagPattern       = regexp.MustCompile(`<[^>]*>`)
)

// StripHTMLTags converts an HTML email body into rough plain text so the
// reply extractor can work on it. Block-level closers become newlines to
// preserve the line structure the boundary markers depend on.
func StripHTMLTags(html string) string {
	text := htmlLineBreakPattern.ReplaceAllString(html, "\n")
	text = htmlTagPattern.ReplaceAllString(text, " ")

	// Unescape HTML entities (basic ones)
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&quot;", "\"")
	text = strings.ReplaceAll(text, "&#39;", "'")

	// Collapse runs of spaces and tabs within each line, keeping newlines
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
