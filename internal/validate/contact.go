// Package validate holds the contact-field predicates shared by the
// wizard stage gates and the server-side order validation. The client
// gate is a UX convenience; the server re-runs the same checks.
package validate

import "strings"

type Contact struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

const (
	phoneMinLen = 6
	phoneMaxLen = 20
)

// Validate returns one message per failing field, keyed by the JSON
// field name. An empty map means the contact is valid.
func (c Contact) Validate() map[string]string {
	errs := make(map[string]string)

	if len(strings.TrimSpace(c.FirstName)) < 2 {
		errs["firstName"] = "first name must be at least 2 characters"
	}
	if len(strings.TrimSpace(c.LastName)) < 2 {
		errs["lastName"] = "last name must be at least 2 characters"
	}
	if !validEmail(c.Email) {
		errs["email"] = "please enter a valid email address"
	}
	if msg := phoneError(c.Phone); msg != "" {
		errs["phone"] = msg
	}

	return errs
}

func validEmail(email string) bool {
	return len(email) >= 3 && strings.Contains(email, "@")
}

func phoneError(phone string) string {
	if len(phone) < phoneMinLen {
		return "phone number is too short"
	}
	if len(phone) > phoneMaxLen {
		return "phone number is too long"
	}
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			continue
		}
		switch r {
		case '+', '-', ' ':
			continue
		}
		return "phone can only contain numbers, +, - and spaces"
	}
	return ""
}
