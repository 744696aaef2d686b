package sim

import (
	"context"
	"sync"
)

// Ensemble runs independent simulators side by side. Members must not share
// field arrays.
type Ensemble struct {
	members []*Simulator
	configs []Config
}

func NewEnsemble() *Ensemble {
	return &Ensemble{}
}

func (e *Ensemble) Add(s *Simulator, cfg Config) {
	e.members = append(e.members, s)
	e.configs = append(e.configs, cfg)
}

func (e *Ensemble) Len() int { return len(e.members) }

// Run returns one result per member in insertion order. Results of members
// that failed are still returned alongside the errors.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, []error) {
	results := make([]*Result, len(e.members))
	errs := make([]error, len(e.members))

	var wg sync.WaitGroup
	for i := range e.members {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = e.members[idx].Run(ctx, e.configs[idx])
		}(i)
	}

	wg.Wait()
	return results, errs
}
