package billing

// State is a checkout session phase.
type State int

const (
	StateAwaitingCustomer State = iota
	StateBuildingCart
	StateFinalizing
	StateCommitted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateAwaitingCustomer:
		return "awaiting_customer"
	case StateBuildingCart:
		return "building_cart"
	case StateFinalizing:
		return "finalizing"
	case StateCommitted:
		return "committed"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateAborted
}
