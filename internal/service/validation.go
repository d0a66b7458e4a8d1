package service

import (
	"net/mail"
	"strings"

	"go-forum/internal/auth"
	"go-forum/internal/util"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	maxEmailLen    = 100
	minPasswordLen = 6
	maxTitleLen    = 255
)

type fieldErrors map[string]string

func (f fieldErrors) empty() bool {
	return len(f) == 0
}

func validateUsername(fields fieldErrors, username string) {
	n := util.RuneLen(username)
	switch {
	case n == 0:
		fields["username"] = "is required"
	case n < minUsernameLen:
		fields["username"] = "must be at least 3 characters"
	case n > maxUsernameLen:
		fields["username"] = "must be at most 50 characters"
	case strings.ContainsAny(username, " \t"):
		fields["username"] = "must not contain whitespace"
	}
}

func validateEmail(fields fieldErrors, email string) {
	if email == "" {
		fields["email"] = "is required"
		return
	}
	if util.RuneLen(email) > maxEmailLen {
		fields["email"] = "must be at most 100 characters"
		return
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		fields["email"] = "is not a valid email address"
	}
}

func validatePassword(fields fieldErrors, field string, password string) {
	switch {
	case password == "":
		fields[field] = "is required"
	case len(password) < minPasswordLen:
		fields[field] = "must be at least 6 characters"
	case len(password) > auth.MaxPasswordBytes:
		fields[field] = "must be at most 72 bytes"
	}
}

func validateTitle(fields fieldErrors, title string) {
	n := util.RuneLen(title)
	switch {
	case n == 0:
		fields["title"] = "is required"
	case n > maxTitleLen:
		fields["title"] = "must be at most 255 characters"
	}
}

func validateContent(fields fieldErrors, content string) {
	if content == "" {
		fields["content"] = "is required"
	}
}
