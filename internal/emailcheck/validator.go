// Package emailcheck validates that a signup email address is syntactically
// sound and that its domain can actually receive mail (has MX records).
// Mailbox existence is deliberately not checked.
package emailcheck

import (
	"context"
	"fmt"
	"net"
	"net/mail"
	"strings"
	"time"
)

// ErrDomainUndeliverable is returned when the address domain has no usable
// MX records. Its message is shown to the user verbatim.
var ErrDomainUndeliverable = &ValidationError{msg: "Email domain cannot receive mail"}

// ValidationError is a user-facing email validation failure.
type ValidationError struct{ msg string }

func (e *ValidationError) Error() string { return e.msg }

// MXResolver resolves mail-exchange records for a domain.
type MXResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// Validator checks address syntax and domain deliverability. The MX lookup
// is a live DNS query on every call; there is no caching or retry, so a
// transient resolver failure surfaces as a validation failure.
type Validator struct {
	resolver MXResolver
	timeout  time.Duration
}

// NewValidator creates a validator backed by the system DNS resolver.
func NewValidator() *Validator {
	return &Validator{resolver: &net.Resolver{}, timeout: 5 * time.Second}
}

// NewValidatorWithResolver creates a validator with a custom resolver.
func NewValidatorWithResolver(resolver MXResolver) *Validator {
	return &Validator{resolver: resolver, timeout: 5 * time.Second}
}

// Validate checks syntax, normalizes the address (trimmed, domain
// lower-cased) and confirms the domain publishes at least one MX record.
// Returns the normalized address on success.
func (v *Validator) Validate(ctx context.Context, email string) (string, error) {
	trimmed := strings.TrimSpace(email)

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", &ValidationError{msg: fmt.Sprintf("Invalid email address: %v", err)}
	}
	// Reject display-name forms like "Jane <jane@example.com>"; the form
	// submits a bare address.
	if addr.Address != trimmed {
		return "", &ValidationError{msg: "Invalid email address: must be a plain address"}
	}

	at := strings.LastIndex(trimmed, "@")
	if at < 1 || at == len(trimmed)-1 {
		return "", &ValidationError{msg: "Invalid email address: missing local part or domain"}
	}
	normalized := trimmed[:at] + "@" + strings.ToLower(trimmed[at+1:])
	domain := normalized[at+1:]

	lookupCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	records, err := v.resolver.LookupMX(lookupCtx, domain)
	if err != nil || len(records) == 0 {
		return "", ErrDomainUndeliverable
	}

	return normalized, nil
}
