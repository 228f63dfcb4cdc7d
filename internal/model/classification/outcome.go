package classification

import "fmt"

// Reason explains why a classifier produced no label.
type Reason string

const (
	ReasonTimeout     Reason = "timeout"
	ReasonUnavailable Reason = "unavailable"
	ReasonMalformed   Reason = "malformed"
	ReasonEmptyInput  Reason = "empty_input"
	ReasonCanceled    Reason = "canceled"
)

// Result is a successful classification.
type Result struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Outcome is either a Result or a failure Reason, never both. Adapters build
// it once at the provider boundary so downstream code only checks OK.
type Outcome struct {
	result Result
	reason Reason
	cause  error
}

// Success wraps a classification.
func Success(label string, confidence float64) Outcome {
	return Outcome{result: Result{Label: label, Confidence: confidence}}
}

// Failure records why classification did not happen. cause is optional.
func Failure(reason Reason, cause error) Outcome {
	if reason == "" {
		reason = ReasonUnavailable
	}
	return Outcome{reason: reason, cause: cause}
}

// OK reports whether the outcome carries a Result.
func (o Outcome) OK() bool {
	return o.reason == ""
}

// Result returns the classification and whether it is present.
func (o Outcome) Result() (Result, bool) {
	return o.result, o.OK()
}

// Reason is empty for successful outcomes.
func (o Outcome) Reason() Reason {
	return o.reason
}

// Err describes a failed outcome, nil on success.
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}
	if o.cause != nil {
		return fmt.Errorf("classification %s: %w", o.reason, o.cause)
	}
	return fmt.Errorf("classification %s", o.reason)
}
