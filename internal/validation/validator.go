// Package validation performs the syntactic credential checks that run
// before any I/O, on both the server and the client.
package validation

import (
	"strings"

	"github.com/authkeeper/authkeeper/internal/envelope"
)

// Validator evaluates the login and registration rule tables.
type Validator struct {
	login    []Rule
	register []Rule
}

// New builds a Validator whose registration table is derived from p. Login
// always uses the base rules only.
func New(p Policy) (*Validator, error) {
	register, err := p.Rules()
	if err != nil {
		return nil, err
	}
	return &Validator{login: baseRules(), register: register}, nil
}

// Default is a Validator over DefaultRegistrationPolicy.
func Default() *Validator {
	v, err := New(DefaultRegistrationPolicy())
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks the credentials. An empty result means they are valid.
// The username is trimmed before checking; the password is used verbatim.
func (v *Validator) Validate(username, password string, forLogin bool) []envelope.FieldError {
	rules := v.register
	if forLogin {
		rules = v.login
	}

	values := map[string]string{
		FieldUsername: strings.TrimSpace(username),
		FieldPassword: password,
	}

	var errs []envelope.FieldError
	stopped := map[string]bool{}

	for _, r := range rules {
		if stopped[r.Field] {
			continue
		}
		if err := r.Check.Validate(values[r.Field]); err != nil {
			errs = append(errs, envelope.FieldError{Field: r.Field, Code: r.Code, Message: r.Message})
			if r.Stop {
				stopped[r.Field] = true
			}
		}
	}

	return errs
}
