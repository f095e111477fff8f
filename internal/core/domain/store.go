package domain

// StoreStatus is the lifecycle status of a merchant store.
type StoreStatus string

const (
	StoreActive    StoreStatus = "active"
	StorePending   StoreStatus = "pending"
	StoreSuspended StoreStatus = "suspended"
	StoreInactive  StoreStatus = "inactive"
)

// StoreResource is the slice of store data the validity gate reads.
type StoreResource struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Status StoreStatus `json:"status"`
}

// StoreGateState is the resolution state of a merchant's store.
type StoreGateState string

const (
	StoreGateNotApplicable StoreGateState = "not-applicable"
	StoreGateUnknown       StoreGateState = "unknown"
	StoreGateLoading       StoreGateState = "loading"
	StoreGateValid         StoreGateState = "valid"
	StoreGateMissing       StoreGateState = "missing"
	StoreGateInvalidStatus StoreGateState = "invalid-status"
)

// StoreCheck is the verdict of the resource validity gate.
type StoreCheck struct {
	State   StoreGateState `json:"state"`
	Store   *StoreResource `json:"store,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Usable reports whether merchant-scoped screens may render.
func (c StoreCheck) Usable() bool {
	return c.State == StoreGateValid || c.State == StoreGateNotApplicable
}
