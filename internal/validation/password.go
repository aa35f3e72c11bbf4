package validation

import (
	"strings"
	"unicode/utf8"
)

// SpecialCharacters is the set counted by the special-character rule.
const SpecialCharacters = `!@#$%^&*(),.?":{}|<>`

// MinPasswordLength is the shortest acceptable password.
const MinPasswordLength = 8

// Strength tiers.
const (
	TierWeak   = "weak"
	TierMedium = "medium"
	TierStrong = "strong"
)

// PasswordChecks holds the six independent password rules.
type PasswordChecks struct {
	Length    bool `json:"length"`
	Uppercase bool `json:"uppercase"`
	Lowercase bool `json:"lowercase"`
	Number    bool `json:"number"`
	Special   bool `json:"special"`
	Match     bool `json:"match"`
}

// PasswordStrength is the evaluated password with its tier.
type PasswordStrength struct {
	Checks    PasswordChecks `json:"checks"`
	Satisfied int            `json:"satisfied"`
	Tier      string         `json:"tier"`
}

// Acceptable reports whether every rule holds, the bar for registration.
func (p PasswordStrength) Acceptable() bool {
	return p.Satisfied == 6
}

// CheckPassword evaluates password against the rules. Match requires a
// non-empty confirmation equal to password.
func CheckPassword(password, confirmation string) PasswordStrength {
	checks := PasswordChecks{
		Length:    utf8.RuneCountInString(password) >= MinPasswordLength,
		Uppercase: strings.IndexFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) >= 0,
		Lowercase: strings.IndexFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }) >= 0,
		Number:    strings.IndexFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0,
		Special:   strings.ContainsAny(password, SpecialCharacters),
		Match:     confirmation != "" && password == confirmation,
	}

	satisfied := 0
	for _, ok := range []bool{checks.Length, checks.Uppercase, checks.Lowercase, checks.Number, checks.Special, checks.Match} {
		if ok {
			satisfied++
		}
	}

	tier := TierWeak
	switch {
	case satisfied >= 5:
		tier = TierStrong
	case satisfied >= 3:
		tier = TierMedium
	}
	return PasswordStrength{Checks: checks, Satisfied: satisfied, Tier: tier}
}
