// Package validation runs data-quality rules over a parsed BRQ document.
package validation

import (
	"log/slog"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

// Outcome is what a single rule reports. A non-empty Error fails the rule
// and stops the run; Messages are surfaced either way.
type Outcome struct {
	Error    string
	Messages []string
}

// Rule checks one aspect of a document.
type Rule interface {
	Name() string
	Check(doc *domain.Document) Outcome
}

// RuleFunc adapts a function to Rule.
type RuleFunc struct {
	RuleName string
	Fn       func(doc *domain.Document) Outcome
}

func (r RuleFunc) Name() string                       { return r.RuleName }
func (r RuleFunc) Check(doc *domain.Document) Outcome { return r.Fn(doc) }

type Engine struct {
	rules []Rule
	log   *slog.Logger
}

func NewEngine(log *slog.Logger, rules ...Rule) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{rules: rules, log: log}
}

// Run applies the rules in order. The first erroring rule ends the run with
// ContinueValidation false; rules after it are not recorded.
func (e *Engine) Run(doc *domain.Document) domain.ValidationResult {
	res := domain.ValidationResult{
		Result:             domain.RuleSuccess,
		ContinueValidation: true,
		Details:            []domain.RuleResult{},
		Messages:           []string{},
	}
	for _, r := range e.rules {
		out := r.Check(doc)
		res.Messages = append(res.Messages, out.Messages...)

		rr := domain.RuleResult{RuleName: r.Name(), Result: domain.RuleSuccess}
		if out.Error != "" {
			rr.Result = domain.RuleError
			rr.Msg = out.Error
		}
		res.Details = append(res.Details, rr)

		if rr.Result == domain.RuleError {
			e.log.Info("validation rule failed", "rule", rr.RuleName, "msg", rr.Msg)
			res.Result = domain.RuleError
			res.ContinueValidation = false
			break
		}
		e.log.Debug("validation rule passed", "rule", rr.RuleName, "messages", len(out.Messages))
	}
	return res
}
