// Package businessflow contains the core business logic and use cases for lead-capture workflows
package businessflow

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Localized validation messages shown to the form visitor
const (
	MsgContactRequired = "El contacto es requerido"
	MsgContactInvalid  = "Ingresá un email o teléfono válido"
	MsgNameRequired    = "El nombre es requerido"
)

var (
	emailPattern      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneFormatChars  = regexp.MustCompile(`[\s\-.()]`)
	phonePattern      = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
	messageURLPattern = regexp.MustCompile(`https?://[^\s]+`)
)

// spamPatterns are matched case-insensitively against the message body.
// Each matching pattern contributes independently to the score.
var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`casino`),
	regexp.MustCompile(`viagra`),
	regexp.MustCompile(`lottery`),
	regexp.MustCompile(`winner`),
	regexp.MustCompile(`cryptocurrency.*invest`),
	regexp.MustCompile(`make money fast`),
	regexp.MustCompile(`click here`),
	regexp.MustCompile(`\$[0-9]{4,}.*day`),
}

// disposableEmailDomains are known throwaway email providers
var disposableEmailDomains = map[string]struct{}{
	"tempmail.com":          {},
	"throwaway.email":       {},
	"guerrillamail.com":     {},
	"mailinator.com":        {},
	"temp-mail.org":         {},
	"10minutemail.com":      {},
	"fakeinbox.com":         {},
	"trashmail.com":         {},
	"yopmail.com":           {},
	"maildrop.cc":           {},
	"getairmail.com":        {},
	"sharklasers.com":       {},
	"guerrillamailblock.com": {},
	"pokemail.net":          {},
	"spam4.me":              {},
	"grr.la":                {},
	"dispostable.com":       {},
	"tempail.com":           {},
	"emailondeck.com":       {},
	"getnada.com":           {},
}

// ValidateContact classifies a free-text contact string as a valid email
// or phone. Returns (false, localized message) when it is neither.
func ValidateContact(contact string) (bool, string) {
	contact = strings.TrimSpace(contact)

	if contact == "" {
		return false, MsgContactRequired
	}

	if emailPattern.MatchString(contact) {
		return true, ""
	}

	phone := phoneFormatChars.ReplaceAllString(contact, "")
	if phonePattern.MatchString(phone) {
		return true, ""
	}

	return false, MsgContactInvalid
}

// ExtractEmailFromContact returns the lower-cased contact when it is an
// email address, or "" when it is not.
func ExtractEmailFromContact(contact string) string {
	contact = strings.TrimSpace(contact)
	if emailPattern.MatchString(contact) {
		return strings.ToLower(contact)
	}
	return ""
}

// IsDisposableEmail checks if the email belongs to a known disposable provider
func IsDisposableEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	_, ok := disposableEmailDomains[domain]
	return ok
}

// CalculateSpamScore computes an additive risk score from independent
// signals. Deterministic and side-effect free; the rate-limit penalty
// is added by the caller, not here.
func CalculateSpamScore(name, contact, message string, honeypotFilled bool) int {
	score := 0

	// A legitimate user never fills a hidden field
	if honeypotFilled {
		score += 10
	}

	// URL flooding scales with severity
	urlsFound := len(messageURLPattern.FindAllString(message, -1))
	if urlsFound > 3 {
		score += urlsFound
	}

	messageLower := strings.ToLower(message)
	for _, pattern := range spamPatterns {
		if pattern.MatchString(messageLower) {
			score += 3
		}
	}

	if utf8.RuneCountInString(name) < 2 {
		score += 2
	}

	if message != "" && message == strings.ToUpper(message) && utf8.RuneCountInString(message) > 20 {
		score += 2
	}

	if IsDisposableEmail(contact) {
		score += 3
	}

	return score
}

// HashIP hashes an IP address with a secret salt. Raw IPs are never
// persisted, only this digest.
func HashIP(ipAddress, secret string) string {
	sum := sha256.Sum256([]byte(ipAddress + ":" + secret))
	return hex.EncodeToString(sum[:])[:64]
}

// TruncateUserAgent bounds the user-agent string to its stored length
func TruncateUserAgent(userAgent string) string {
	if len(userAgent) > 255 {
		return userAgent[:255]
	}
	return userAgent
}
