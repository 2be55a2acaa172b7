package types

// LoadState represents the lifecycle of a unit's materialization.
// Transitions are monotonic except Failed -> Loading (retry).
type LoadState string

const (
	StateUnloaded LoadState = "unloaded"
	StateLoading  LoadState = "loading"
	StateLoaded   LoadState = "loaded"
	StateFailed   LoadState = "failed"
)

// Decision is the outcome of gate evaluation. Denial is a value, not an
// error; the dispatcher decides what to do with the redirect target.
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"` // trigger key to navigate to on denial
}

// Allow returns a permitting decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a rejecting decision with an optional redirect target.
func Deny(redirect string) Decision {
	return Decision{Allowed: false, Redirect: redirect}
}
