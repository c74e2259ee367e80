// Package workflow evaluates where a request stands in its policy's approval chain.
// It is pure: callers load steps and approvals and pass them in.
package workflow

import (
	"policy-portal-backend/models"
	"sort"
	"time"

	"github.com/pkg/errors"
)

type Step struct {
	Order   int
	RoleID  string
	IsFinal bool
}

type Decision struct {
	ApproverUserID string
	ApproverRoleID string
	Status         models.ApprovalStatus
	ActionDate     *time.Time
}

type State struct {
	Current    *Step
	IsComplete bool
	IsRejected bool
	// Approved holds the orders of the steps already satisfied, in walk order.
	Approved []int
}

func (s State) CurrentApproverRoleID() string {
	if s.Current == nil {
		return ""
	}
	return s.Current.RoleID
}

// CurrentStepOrder returns -1 when no step is awaiting a decision.
func (s State) CurrentStepOrder() int {
	if s.Current == nil {
		return -1
	}
	return s.Current.Order
}

func (s State) Status() models.RequestStatus {
	switch {
	case s.IsRejected:
		return models.RequestStatusRejected
	case s.IsComplete:
		return models.RequestStatusApproved
	}
	return models.RequestStatusPending
}

// Validate checks the invariants that must hold for any step set of one policy,
// including a workflow that is still being built.
func Validate(steps []Step) error {
	orders := make(map[int]bool, len(steps))
	finalOrder := -1
	maxOrder := -1
	for _, step := range steps {
		if step.Order < 0 {
			return errors.Wrapf(models.ErrInvalidWorkflow, "step order %v is negative", step.Order)
		}
		if orders[step.Order] {
			return errors.Wrapf(models.ErrInvalidWorkflow, "step order %v is used more than once", step.Order)
		}
		orders[step.Order] = true
		if step.IsFinal {
			if finalOrder >= 0 {
				return errors.Wrap(models.ErrInvalidWorkflow, "more than one final step")
			}
			finalOrder = step.Order
		}
		if step.Order > maxOrder {
			maxOrder = step.Order
		}
	}
	if finalOrder >= 0 && finalOrder != maxOrder {
		return errors.Wrapf(models.ErrInvalidWorkflow, "final step %v is not the last one (%v)", finalOrder, maxOrder)
	}
	return nil
}

// ValidateComplete additionally requires a published workflow to end in exactly
// one final step. An empty workflow is valid and auto-approves.
func ValidateComplete(steps []Step) error {
	if err := Validate(steps); err != nil {
		return err
	}
	if len(steps) == 0 {
		return nil
	}
	for _, step := range steps {
		if step.IsFinal {
			return nil
		}
	}
	return errors.Wrap(models.ErrInvalidWorkflow, "workflow has no final step")
}

// Evaluate walks the steps in order and matches each one with the earliest
// decided, not yet consumed approval recorded under the step's role.
// A policy without steps is complete from the start.
func Evaluate(steps []Step, decisions []Decision) (State, error) {
	if err := Validate(steps); err != nil {
		return State{}, err
	}
	ordered := make([]Step, len(steps))
	copy(ordered, steps)
	sort.Slice(ordered, func(a, b int) bool {
		return ordered[a].Order < ordered[b].Order
	})

	candidates := decidedInActionOrder(decisions)
	consumed := make([]bool, len(candidates))
	state := State{Approved: []int{}}
	for idx := range ordered {
		step := ordered[idx]
		matched := -1
		for cIdx, candidate := range candidates {
			if consumed[cIdx] || candidate.ApproverRoleID != step.RoleID {
				continue
			}
			matched = cIdx
			break
		}
		if matched < 0 {
			state.Current = &step
			return state, nil
		}
		consumed[matched] = true
		if candidates[matched].Status == models.ApprovalStatusRejected {
			state.IsRejected = true
			return state, nil
		}
		state.Approved = append(state.Approved, step.Order)
	}
	state.IsComplete = true
	return state, nil
}

// decidedInActionOrder drops pending approvals and sorts the rest by action date.
// Insertion order breaks ties and places undated decisions last.
func decidedInActionOrder(decisions []Decision) []Decision {
	result := make([]Decision, 0, len(decisions))
	for _, decision := range decisions {
		if decision.Status.IsDecided() {
			result = append(result, decision)
		}
	}
	sort.SliceStable(result, func(a, b int) bool {
		left, right := result[a].ActionDate, result[b].ActionDate
		switch {
		case left == nil:
			return false
		case right == nil:
			return true
		}
		return left.Before(*right)
	})
	return result
}
