package domain

type RuleOutcome string

const (
	RuleSuccess RuleOutcome = "SUCCESS"
	RuleError   RuleOutcome = "ERROR"
)

// RuleResult is the outcome of one data-quality rule.
type RuleResult struct {
	RuleName       string      `json:"ruleName"`
	Result         RuleOutcome `json:"result"`
	NotificationTo string      `json:"notificationTo,omitempty"`
	Msg            string      `json:"msg,omitempty"`
}

// ValidationResult aggregates rule results for one document.
type ValidationResult struct {
	Result             RuleOutcome  `json:"result"`
	ContinueValidation bool         `json:"continueValidation"`
	Details            []RuleResult `json:"details"`
	Messages           []string     `json:"validationMessages"`
}

// Failed reports whether any rule errored.
func (v *ValidationResult) Failed() bool { return v.Result == RuleError }
