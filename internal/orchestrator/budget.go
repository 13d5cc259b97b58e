package orchestrator

import (
	"errors"
	"sync"
)

// ErrStepBudgetExceeded is returned once a run has used all of its steps.
var ErrStepBudgetExceeded = errors.New("step budget exceeded")

// stepBudget counts Generator and Stage calls. It is safe for concurrent use
// by parallel builders.
type stepBudget struct {
	mu   sync.Mutex
	max  int
	used int
}

func newStepBudget(max int) *stepBudget {
	return &stepBudget{max: max}
}

// spend takes one step, or fails without taking it when none remain.
func (b *stepBudget) spend() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.used >= b.max {
		return ErrStepBudgetExceeded
	}
	b.used++
	return nil
}

func (b *stepBudget) steps() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}
