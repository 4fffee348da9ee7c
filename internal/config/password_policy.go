// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrWeakPassword wraps every password policy violation.
var ErrWeakPassword = errors.New("password does not meet policy")

// PasswordPolicy defines the requirements for passwords set through the
// user API or the seed file.
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireDigit     bool
	RequireSpecial   bool

	// MaxConsecutiveRepeats limits runs of one character. 0 disables the check.
	MaxConsecutiveRepeats int

	ForbidCommonPasswords   bool
	ForbidAccountSimilarity bool
}

// DefaultPasswordPolicy returns the policy applied to directory users.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:               8,
		RequireLowercase:        true,
		RequireDigit:            true,
		MaxConsecutiveRepeats:   4,
		ForbidCommonPasswords:   true,
		ForbidAccountSimilarity: true,
	}
}

// StrictPasswordPolicy returns a policy for administrative accounts.
func StrictPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:               12,
		RequireUppercase:        true,
		RequireLowercase:        true,
		RequireDigit:            true,
		RequireSpecial:          true,
		MaxConsecutiveRepeats:   3,
		ForbidCommonPasswords:   true,
		ForbidAccountSimilarity: true,
	}
}

// Validate returns nil if password satisfies the policy, otherwise an error
// wrapping ErrWeakPassword that lists every violation.
func (p PasswordPolicy) Validate(password, account string) error {
	var problems []string

	if len(password) < p.MinLength {
		problems = append(problems, fmt.Sprintf("must be at least %d characters", p.MinLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	if p.RequireUppercase && !hasUpper {
		problems = append(problems, "must contain an uppercase letter")
	}
	if p.RequireLowercase && !hasLower {
		problems = append(problems, "must contain a lowercase letter")
	}
	if p.RequireDigit && !hasDigit {
		problems = append(problems, "must contain a digit")
	}
	if p.RequireSpecial && !hasSpecial {
		problems = append(problems, "must contain a special character")
	}

	if p.MaxConsecutiveRepeats > 0 && maxConsecutiveRepeats(password) > p.MaxConsecutiveRepeats {
		problems = append(problems, fmt.Sprintf("must not repeat a character more than %d times in a row", p.MaxConsecutiveRepeats))
	}
	if p.ForbidCommonPasswords && isCommonPassword(password) {
		problems = append(problems, "is too common")
	}
	if p.ForbidAccountSimilarity && account != "" && isSimilarToAccount(password, account) {
		problems = append(problems, "is too similar to the account name")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrWeakPassword, strings.Join(problems, "; "))
}

func maxConsecutiveRepeats(password string) int {
	longest, current := 0, 0
	var last rune
	for i, r := range password {
		if i > 0 && r == last {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
		last = r
	}
	return longest
}

var commonPasswords = map[string]bool{
	"password": true, "password1": true, "password123": true, "passw0rd": true,
	"123456": true, "12345678": true, "123456789": true, "1234567890": true,
	"qwerty": true, "qwerty123": true, "abc123": true, "letmein": true,
	"welcome": true, "welcome1": true, "admin": true, "admin123": true,
	"iloveyou": true, "monkey": true, "dragon": true, "master": true,
	"changeme": true, "secret": true, "trustno1": true, "111111": true,
}

func isCommonPassword(password string) bool {
	return commonPasswords[strings.ToLower(password)]
}

// isSimilarToAccount reports whether one of password and account contains
// the other, ignoring case, or password is account reversed.
func isSimilarToAccount(password, account string) bool {
	p := strings.ToLower(password)
	a := strings.ToLower(account)
	if len(a) < 3 {
		return p == a
	}
	return strings.Contains(p, a) || strings.Contains(a, p) || p == reverseString(a)
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
