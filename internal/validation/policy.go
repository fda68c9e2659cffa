package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation"
)

const (
	FieldUsername = "Username"
	FieldPassword = "Password"
)

// Username length bounds apply to login and registration alike.
const (
	UsernameMinLength = 4
	UsernameMaxLength = 20
)

// Policy is the tunable part of registration validation. Zero values disable
// the corresponding rule, so tightening the policy is a config change.
type Policy struct {
	UsernamePattern   string `json:"username_pattern" env:"USERNAME_PATTERN"`
	PasswordMinLength int    `json:"password_min_length" env:"PASSWORD_MIN_LENGTH"`
	PasswordMaxLength int    `json:"password_max_length" env:"PASSWORD_MAX_LENGTH"`
	RequireUpper      bool   `json:"require_upper" env:"REQUIRE_UPPER"`
	RequireLower      bool   `json:"require_lower" env:"REQUIRE_LOWER"`
	RequireDigit      bool   `json:"require_digit" env:"REQUIRE_DIGIT"`
	RequireSpecial    bool   `json:"require_special" env:"REQUIRE_SPECIAL"`
}

// DefaultRegistrationPolicy returns the stock registration rules.
func DefaultRegistrationPolicy() Policy {
	return Policy{
		UsernamePattern:   `^[a-zA-Z0-9_-]+$`,
		PasswordMinLength: 8,
		PasswordMaxLength: 128,
		RequireUpper:      true,
		RequireLower:      true,
		RequireDigit:      true,
		RequireSpecial:    true,
	}
}

// Rule is one row of the validation table.
type Rule struct {
	Field   string
	Code    string
	Message string
	// Stop ends evaluation of the field when this rule fails.
	Stop  bool
	Check ozzo.Rule
}

var (
	upperRe   = regexp.MustCompile(`\p{Lu}`)
	lowerRe   = regexp.MustCompile(`\p{Ll}`)
	digitRe   = regexp.MustCompile(`\p{Nd}`)
	specialRe = regexp.MustCompile(`[^\p{L}\p{N}]`)
)

var (
	errBlank        = errors.New("cannot be blank")
	errMissingClass = errors.New("missing character class")
)

var notBlank = ozzo.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errBlank
	}
	return nil
})

func baseRules() []Rule {
	return []Rule{
		{
			Field: FieldUsername, Code: "Required", Stop: true,
			Message: "Username is required",
			Check:   notBlank,
		},
		{
			Field: FieldUsername, Code: "Length", Stop: true,
			Message: fmt.Sprintf("Username must be between %d and %d characters long", UsernameMinLength, UsernameMaxLength),
			Check:   ozzo.RuneLength(UsernameMinLength, UsernameMaxLength),
		},
		{
			Field: FieldPassword, Code: "Required", Stop: true,
			Message: "Password is required",
			Check:   notBlank,
		},
	}
}

// Rules expands the policy into table rows, appended after the base rules.
func (p Policy) Rules() ([]Rule, error) {
	rules := baseRules()

	if p.UsernamePattern != "" {
		re, err := regexp.Compile(p.UsernamePattern)
		if err != nil {
			return nil, fmt.Errorf("username pattern: %w", err)
		}
		rules = append(rules, Rule{
			Field: FieldUsername, Code: "Format",
			Message: "Username may only contain letters, digits, '_' and '-'",
			Check:   ozzo.Match(re),
		})
	}

	if p.PasswordMinLength > 0 || p.PasswordMaxLength > 0 {
		rules = append(rules, Rule{
			Field: FieldPassword, Code: "Length",
			Message: passwordLengthMessage(p.PasswordMinLength, p.PasswordMaxLength),
			Check:   ozzo.RuneLength(p.PasswordMinLength, p.PasswordMaxLength),
		})
	}

	charClasses := []struct {
		on      bool
		code    string
		message string
		re      *regexp.Regexp
	}{
		{p.RequireUpper, "Uppercase", "Password must contain at least one uppercase letter", upperRe},
		{p.RequireLower, "Lowercase", "Password must contain at least one lowercase letter", lowerRe},
		{p.RequireDigit, "Digit", "Password must contain at least one digit", digitRe},
		{p.RequireSpecial, "SpecialCharacter", "Password must contain at least one special character", specialRe},
	}
	for _, c := range charClasses {
		if !c.on {
			continue
		}
		rules = append(rules, Rule{Field: FieldPassword, Code: c.code, Message: c.message, Check: contains(c.re)})
	}

	return rules, nil
}

func passwordLengthMessage(min, max int) string {
	switch {
	case max <= 0:
		return fmt.Sprintf("Password must be at least %d characters long", min)
	case min <= 0:
		return fmt.Sprintf("Password must be at most %d characters long", max)
	default:
		return fmt.Sprintf("Password must be between %d and %d characters long", min, max)
	}
}

// contains is satisfied when re matches somewhere in the value. Unlike
// ozzo.Match it is not anchored by the caller's pattern.
func contains(re *regexp.Regexp) ozzo.Rule {
	return ozzo.By(func(value interface{}) error {
		s, _ := value.(string)
		if !re.MatchString(s) {
			return errMissingClass
		}
		return nil
	})
}
