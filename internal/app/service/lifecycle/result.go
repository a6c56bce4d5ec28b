package lifecycle

import "github.com/flexfit/gymdesk/pkg/dates"

// Outcome classifies the result of a lifecycle operation. Failures are
// values, not errors: only infrastructure problems (store I/O) surface as
// Go errors across the engine boundary.
type Outcome string

const (
	OutcomeOK Outcome = "ok"
	// OutcomeCorrected reports the self-healing path: a Frozen membership
	// with no freeze window covering today was reset to Active.
	OutcomeCorrected    Outcome = "corrected"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeNotEligible  Outcome = "not_eligible"
	OutcomeInvalidRange Outcome = "invalid_range"
	OutcomeNotFrozen    Outcome = "not_frozen"
)

// Result is the explicit success/failure envelope returned by freeze and
// unfreeze operations.
type Result struct {
	Outcome    Outcome    `json:"outcome"`
	Message    string     `json:"message"`
	NewEndDate dates.Date `json:"new_end_date,omitempty"`
}

func (r Result) OK() bool {
	return r.Outcome == OutcomeOK || r.Outcome == OutcomeCorrected
}

func failure(outcome Outcome, message string) Result {
	return Result{Outcome: outcome, Message: message}
}
