package mpesa

import (
	"fmt"
	"regexp"
	"strings"
)

var msisdnRe = regexp.MustCompile(`^254[17]\d{8}$`)

// PhoneError reports a number that did not normalize to a Safaricom MSISDN.
type PhoneError struct {
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
}

func (e *PhoneError) Error() string {
	return fmt.Sprintf("invalid phone number %q (normalized %q)", e.Original, e.Normalized)
}

// NormalizePhone turns 07XXXXXXXX, 7XXXXXXXX, 1XXXXXXXX, 2547XXXXXXXX and +2547XXXXXXXX
// into the 2547XXXXXXXX / 2541XXXXXXXX form Daraja expects.
func NormalizePhone(raw string) (string, error) {
	s := strings.NewReplacer(" ", "", "-", "", "\t", "").Replace(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "+")

	switch {
	case strings.HasPrefix(s, "0"):
		s = "254" + s[1:]
	case len(s) == 9 && (s[0] == '7' || s[0] == '1'):
		s = "254" + s
	}

	if !msisdnRe.MatchString(s) {
		return "", &PhoneError{Original: raw, Normalized: s}
	}
	return s, nil
}
