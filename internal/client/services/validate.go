package services

import (
	"strings"
	"unicode/utf8"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 30
	minPasswordLen = 6
	maxBioLen      = 500
	otpLen         = 6
	maxPostLen     = 1000
)

// ValidationError is a client-side rejection. It is returned before any
// request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) UserMessage() string {
	return e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func required(field, value, msg string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, msg)
	}
	return nil
}

func validateSignup(in SignupInput) error {
	n := utf8.RuneCountInString(strings.TrimSpace(in.Username))
	if n < minUsernameLen || n > maxUsernameLen {
		return invalid("username", "Username must be between 3 and 30 characters")
	}
	if err := required("email", in.Email, "Email is required"); err != nil {
		return err
	}
	if !strings.Contains(in.Email, "@") {
		return invalid("email", "Email is invalid")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLen {
		return invalid("password", "Password must be at least 6 characters")
	}
	if utf8.RuneCountInString(in.Bio) > maxBioLen {
		return invalid("bio", "Bio must be at most 500 characters")
	}
	return nil
}

func validateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return invalid("credentials", "Email and password are required")
	}
	return nil
}

func validateOtp(otp string) error {
	if len(otp) != otpLen {
		return invalid("otp", "Please enter a valid 6-digit OTP")
	}
	for _, r := range otp {
		if r < '0' || r > '9' {
			return invalid("otp", "Please enter a valid 6-digit OTP")
		}
	}
	return nil
}

func validateReset(newPassword, confirmPassword string) error {
	if newPassword == "" || confirmPassword == "" {
		return invalid("password", "Both password fields are required")
	}
	if newPassword != confirmPassword {
		return invalid("password", "Passwords do not match")
	}
	return nil
}

func validatePost(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return invalid("content", "Post content cannot be empty")
	}
	if utf8.RuneCountInString(content) > maxPostLen {
		return invalid("content", "Post is too long")
	}
	return nil
}
