package checkout

import "fmt"

// Step is a stage of the checkout flow.
type Step string

const (
	StepDetails   Step = "details"
	StepPayment   Step = "payment"
	StepConfirmed Step = "confirmed"
)

// InvalidTransitionError reports a checkout step change the flow does not
// allow.
type InvalidTransitionError struct {
	From, To Step
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s", e.From, e.To)
}

// Flow is the linear checkout state machine: details → payment → confirmed.
// The back button may return from payment to details; confirmed is terminal.
type Flow struct {
	step Step
}

// NewFlow starts a checkout flow at the details step. It fails when the cart
// is empty: there is nothing to check out.
func NewFlow(cartSize int) (*Flow, error) {
	if cartSize <= 0 {
		return nil, ErrEmptyCart
	}
	return &Flow{step: StepDetails}, nil
}

// Step returns the current step.
func (f *Flow) Step() Step {
	return f.step
}

// Advance moves the flow to the given step, enforcing the allowed
// transitions.
func (f *Flow) Advance(to Step) error {
	allowed := false
	switch f.step {
	case StepDetails:
		allowed = to == StepPayment
	case StepPayment:
		allowed = to == StepDetails || to == StepConfirmed
	case StepConfirmed:
		// Terminal.
	}
	if !allowed {
		return &InvalidTransitionError{From: f.step, To: to}
	}
	f.step = to
	return nil
}
