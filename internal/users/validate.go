package users

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Validate checks a complete user as submitted for creation.
func (u User) Validate() error {
	errs := ValidationErrors{}
	if msg := validateName(u.Name); msg != "" {
		errs["name"] = msg
	}
	if msg := validateEmail(u.Email); msg != "" {
		errs["email"] = msg
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidatePartial checks an update. Empty fields are left unchanged by the
// server and are not validated; at least one field must be set.
func (u User) ValidatePartial() error {
	if u.Name == "" && u.Email == "" {
		return ValidationErrors{"user": "at least one of name or email is required"}
	}

	errs := ValidationErrors{}
	if u.Name != "" {
		if msg := validateName(u.Name); msg != "" {
			errs["name"] = msg
		}
	}
	if u.Email != "" {
		if msg := validateEmail(u.Email); msg != "" {
			errs["email"] = msg
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Name is required"
	}
	return ""
}

func validateEmail(email string) string {
	if email == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(email) {
		return "Email is invalid"
	}
	return ""
}
