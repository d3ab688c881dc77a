package checkout

// State tracks where a checkout attempt is in its lifecycle. The value is
// advanced inside the transaction and reported in logs; it never outlives
// the request.
type State string

const (
	StateReceived   State = "received"
	StateValidating State = "validating"
	StateReserving  State = "reserving"
	StateCommitted  State = "committed"
	StateRejected   State = "rejected"
	StateRolledBack State = "rolled_back"
)

// String implements fmt.Stringer.
func (s State) String() string {
	return string(s)
}

// Terminal reports whether the checkout attempt has finished.
func (s State) Terminal() bool {
	switch s {
	case StateCommitted, StateRejected, StateRolledBack:
		return true
	}
	return false
}
