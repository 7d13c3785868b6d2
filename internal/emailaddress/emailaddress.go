// Package emailaddress provides a parsed, normalized email address value
// with access to its components.
package emailaddress

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// pattern is a simplified RFC 5322 shape: local part, '@', domain with at
// least one dot and a purely alphabetic TLD of two or more characters.
var pattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// commonProviders are the domains of widespread consumer email providers.
var commonProviders = map[string]bool{
	"gmail.com":      true,
	"yahoo.com":      true,
	"outlook.com":    true,
	"hotmail.com":    true,
	"aol.com":        true,
	"icloud.com":     true,
	"mail.com":       true,
	"protonmail.com": true,
	"yandex.com":     true,
	"zoho.com":       true,
	"mail.ru":        true,
}

// ErrEmpty is returned when the raw input contains no address at all.
var ErrEmpty = errors.New("email address cannot be empty")

// EmailAddress is a validated email address. The zero value is not usable;
// construct one with New.
type EmailAddress struct {
	address  string
	username string
	domain   string
}

// New normalizes raw (lowercase, surrounding whitespace removed) and
// validates it. It returns an error for empty or malformed input.
func New(raw string) (EmailAddress, error) {
	address := strings.ToLower(strings.TrimSpace(raw))
	if address == "" {
		return EmailAddress{}, ErrEmpty
	}
	if !pattern.MatchString(address) {
		return EmailAddress{}, fmt.Errorf("invalid email address format: %s", address)
	}
	at := strings.Index(address, "@")
	return EmailAddress{
		address:  address,
		username: address[:at],
		domain:   address[at+1:],
	}, nil
}

// Valid reports whether raw would be accepted by New.
func Valid(raw string) bool {
	_, err := New(raw)
	return err == nil
}

// Address returns the full normalized address.
func (e EmailAddress) Address() string { return e.address }

// Username returns the local part before the '@'.
func (e EmailAddress) Username() string { return e.username }

// Domain returns the part after the '@'.
func (e EmailAddress) Domain() string { return e.domain }

func (e EmailAddress) String() string { return e.address }

// Equal compares against another address or a raw string, ignoring case
// and surrounding whitespace.
func (e EmailAddress) Equal(other string) bool {
	return e.address == strings.ToLower(strings.TrimSpace(other))
}

// IsCommonProvider reports whether the domain belongs to a widespread
// consumer email provider.
func (e EmailAddress) IsCommonProvider() bool {
	return commonProviders[e.domain]
}

// DomainParts is the domain broken down into its subdomain and TLD.
type DomainParts struct {
	Full      string `json:"full"`
	Subdomain string `json:"subdomain"`
	TLD       string `json:"tld"`
}

// DomainParts splits the domain into everything before the last label and
// the last label itself. For a single-label domain the subdomain is empty.
func (e EmailAddress) DomainParts() DomainParts {
	parts := strings.Split(e.domain, ".")
	result := DomainParts{Full: e.domain, TLD: parts[len(parts)-1]}
	if len(parts) > 1 {
		result.Subdomain = strings.Join(parts[:len(parts)-1], ".")
	}
	return result
}
