// Package validation decides which answers a KYC form must carry before it
// can be submitted.
//
// Every requirement is a Rule: a guard over the current answers, a check for
// the violation and the message shown to the user. Rules live in one ordered
// table (rules.go); Validate only walks it, so adding a conditional field
// never touches traversal.
package validation

import (
	"sort"

	"kyc-intake/internal/kyc/models"
	dErrors "kyc-intake/pkg/domain-errors"
)

// FieldError names a violated rule by dotted field path.
type FieldError = dErrors.FieldError

// Guard reports whether a rule applies to the current answers.
type Guard func(m *models.FormModel) bool

// Rule is one row of the requirement table. A row with Expand set stands for
// the rules it produces for the current answers (one set per listed owner).
type Rule struct {
	Section  int
	Field    string
	When     Guard
	Violated func(m *models.FormModel) bool
	Message  string
	Expand   func(m *models.FormModel) []Rule
}

// Result holds every violation found, in section order.
type Result struct {
	Errors []FieldError
}

// OK reports whether the form may be submitted.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// Fields returns the offending field paths in order.
func (r Result) Fields() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Field
	}
	return out
}

// Err converts a failed result into a validation_failed domain error, or nil.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return dErrors.WithFields("KYC form has validation errors", r.Errors)
}

// Validate checks m against the full rule table and collects every
// violation; it never stops at the first one and never panics on partially
// filled forms.
func Validate(m *models.FormModel) Result {
	if m == nil {
		return Result{Errors: []FieldError{{Field: "formData", Message: "Form data is required"}}}
	}

	var res Result
	for _, r := range RulesFor(m) {
		if r.When(m) && r.Violated(m) {
			res.Errors = append(res.Errors, FieldError{Field: r.Field, Message: r.Message})
		}
	}
	return res
}

// RulesFor returns the table with every expanding row replaced by its
// expansion, ordered by section and stable within a section.
func RulesFor(m *models.FormModel) []Rule {
	rules := make([]Rule, 0, len(Rules))
	for _, r := range Rules {
		if r.Expand != nil {
			rules = append(rules, r.Expand(m)...)
			continue
		}
		rules = append(rules, r)
	}
	sort.SliceStable(rules, func(a, b int) bool {
		return rules[a].Section < rules[b].Section
	})
	return rules
}
