package service

import "regexp"

// Conversation logs must never store raw contact details or identity numbers.
// Scrubbing happens at log-write time; the streamed response itself is not
// altered.
var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	cnicPattern  = regexp.MustCompile(`\b\d{5}-\d{7}-\d\b`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[\s-]?)?\(?\d{3,4}\)?[\s-]?\d{3}[\s-]?\d{4}\b`)
)

// ScrubPII replaces emails, phone numbers and CNIC-style identity numbers
// with neutral placeholders.
func ScrubPII(text string) string {
	out := emailPattern.ReplaceAllString(text, "[email]")
	out = cnicPattern.ReplaceAllString(out, "[id-number]")
	out = phonePattern.ReplaceAllString(out, "[phone]")
	return out
}
