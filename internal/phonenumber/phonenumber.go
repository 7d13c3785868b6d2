// Package phonenumber provides a validated phone number value with
// normalization and sms:/tel: URI building.
package phonenumber

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrEmpty is returned when the raw input contains no number at all.
var ErrEmpty = errors.New("phone number cannot be empty")

// PhoneNumber is a validated phone number. The display form keeps the
// separators the caller used; Digits and Canonical strip them.
type PhoneNumber struct {
	display string
	digits  string
}

// New trims raw and validates it. Digits plus the separators space, '-',
// '(', ')' and '.' are allowed, as is a single leading '+'. At least one
// digit is required.
func New(raw string) (PhoneNumber, error) {
	display := strings.TrimSpace(raw)
	if display == "" {
		return PhoneNumber{}, ErrEmpty
	}
	var digits strings.Builder
	for i, r := range display {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '+':
			if i != 0 {
				return PhoneNumber{}, fmt.Errorf("phone number must only contain digits and separators: %s", display)
			}
			digits.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
			// separator, dropped from the normalized form
		default:
			return PhoneNumber{}, fmt.Errorf("phone number must only contain digits and separators: %s", display)
		}
	}
	normalized := digits.String()
	if strings.TrimPrefix(normalized, "+") == "" {
		return PhoneNumber{}, fmt.Errorf("phone number must contain at least one digit: %s", display)
	}
	return PhoneNumber{display: display, digits: normalized}, nil
}

// Valid reports whether raw would be accepted by New.
func Valid(raw string) bool {
	_, err := New(raw)
	return err == nil
}

// String returns the trimmed display form.
func (p PhoneNumber) String() string { return p.display }

// Digits returns the separator-free form, keeping a leading '+'.
func (p PhoneNumber) Digits() string { return p.digits }

// Canonical returns the dialable form used in URIs. It is the same as
// Digits; the name records the intent.
func (p PhoneNumber) Canonical() string { return p.digits }

// SMSURI builds an sms: URI for this number. A non-empty body is attached
// percent-encoded as the body query parameter.
func (p PhoneNumber) SMSURI(body string) string {
	if body == "" {
		return "sms:" + p.digits
	}
	encoded := strings.ReplaceAll(url.QueryEscape(body), "+", "%20")
	return "sms:" + p.digits + "?body=" + encoded
}

// VoiceURI builds a tel: URI for this number.
func (p PhoneNumber) VoiceURI() string {
	return "tel:" + p.digits
}
