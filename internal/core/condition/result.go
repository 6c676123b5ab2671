package condition

// Result is the outcome of validating a single value: either accepted with
// the value to store, or rejected with the condition that caused it.
type Result struct {
	value    any
	accepted bool
	cond     *Condition
}

// Accepted creates a result carrying the value to store.
func Accepted(value any) Result {
	return Result{value: value, accepted: true}
}

// Rejected creates a result carrying the rejecting condition.
func Rejected(c *Condition) Result {
	return Result{cond: c}
}

// RejectedErr classifies err and creates a rejected result.
func RejectedErr(err error) Result {
	return Rejected(From(err))
}

// IsAccepted reports whether the value may be stored
func (r Result) IsAccepted() bool {
	return r.accepted
}

// Value returns the accepted value
func (r Result) Value() any {
	return r.value
}

// Condition returns the rejecting condition, nil when accepted
func (r Result) Condition() *Condition {
	return r.cond
}

// Fatal reports whether a rejection must reach the caller. Rejections at a
// suppressible level are logged by the caller and dropped.
func (r Result) Fatal() bool {
	if r.accepted || r.cond == nil {
		return false
	}
	return !r.cond.Level.Suppressible()
}

// Err returns the rejecting condition as an error, nil when accepted
func (r Result) Err() error {
	if r.accepted || r.cond == nil {
		return nil
	}
	return r.cond
}
