package internal

import (
	"fmt"
	"strings"
	"unicode"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
)

const (
	// Direct message constraints
	maxRecipients = 32

	// User agent constraints
	maxUserAgentLength = 256
)

// Validator provides validation operations for API parameters.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateCredentials checks the username/password pair before a device id is derived from it.
// The login identifier may be a username, an email address or a phone number,
// so only emptiness and control characters are rejected.
func (v *Validator) ValidateCredentials(username, password string) error {
	if username == "" {
		return &pkgerrs.ConfigError{Field: "Username", Message: "username cannot be empty"}
	}
	if password == "" {
		return &pkgerrs.ConfigError{Field: "Password", Message: "password cannot be empty"}
	}
	for i, ch := range username {
		if unicode.IsControl(ch) {
			return &pkgerrs.ConfigError{Field: "Username", Message: fmt.Sprintf("username contains control character %U at position %d", ch, i)}
		}
	}
	return nil
}

// ValidateID checks a numeric id (user pk, broadcast id, location id) passed as a path parameter.
func (v *Validator) ValidateID(field string, id int64) error {
	if id <= 0 {
		return &pkgerrs.ValidationError{Field: field, Message: "must be a positive id"}
	}
	return nil
}

// ValidateMediaID checks a media id, which is either "{pk}" or "{pk}_{owner pk}".
func (v *Validator) ValidateMediaID(id string) error {
	if id == "" {
		return &pkgerrs.ValidationError{Field: "media_id", Message: "media id cannot be empty"}
	}
	parts := strings.Split(id, "_")
	if len(parts) > 2 {
		return &pkgerrs.ValidationError{Field: "media_id", Message: fmt.Sprintf("media id %q has too many segments", id)}
	}
	for _, part := range parts {
		if part == "" {
			return &pkgerrs.ValidationError{Field: "media_id", Message: fmt.Sprintf("media id %q has an empty segment", id)}
		}
		for _, ch := range part {
			if ch < '0' || ch > '9' {
				return &pkgerrs.ValidationError{Field: "media_id", Message: fmt.Sprintf("media id contains invalid character '%c'", ch)}
			}
		}
	}
	return nil
}

// ValidateRecipients checks the recipient list of a direct message.
func (v *Validator) ValidateRecipients(recipients []int64) error {
	if len(recipients) == 0 {
		return &pkgerrs.ValidationError{Field: "recipients", Message: "at least one recipient is required"}
	}
	if len(recipients) > maxRecipients {
		return &pkgerrs.ValidationError{Field: "recipients", Message: fmt.Sprintf("cannot message more than %d recipients at once (got %d)", maxRecipients, len(recipients))}
	}
	for i, r := range recipients {
		if r <= 0 {
			return &pkgerrs.ValidationError{Field: fmt.Sprintf("recipients[%d]", i), Message: "must be a positive user id"}
		}
	}
	return nil
}

// ValidateUserAgent validates the User-Agent string to prevent header injection attacks.
func (v *Validator) ValidateUserAgent(ua string) error {
	if len(ua) == 0 {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent cannot be empty"}
	}

	if strings.ContainsAny(ua, "\r\n") {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent cannot contain newline characters"}
	}

	if len(ua) > maxUserAgentLength {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: fmt.Sprintf("user agent too long (max %d characters)", maxUserAgentLength)}
	}

	return nil
}
