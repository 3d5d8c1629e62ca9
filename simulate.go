package barbershop

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// Outcome is what happened to one arrival.
type Outcome struct {
	Visit Visit
	Err   error
}

// Admitted reports whether the customer got a chair.
func (o Outcome) Admitted() bool {
	return o.Err == nil
}

// Report summarizes one run. Outcomes is indexed by arrival number.
type Report struct {
	Chairs   int
	Outcomes []Outcome
}

// Served returns the admitted visits in the order the barber took them.
func (r *Report) Served() []Visit {
	var served []Visit
	for _, o := range r.Outcomes {
		if o.Admitted() {
			served = append(served, o.Visit)
		}
	}
	slices.SortFunc(served, func(a, b Visit) int {
		return cmp.Compare(a.Turn, b.Turn)
	})
	return served
}

// Rejected returns the ids of customers that found no free chair.
func (r *Report) Rejected() []int {
	var ids []int
	for _, o := range r.Outcomes {
		if errors.Is(o.Err, ErrAdmissionRejected) {
			ids = append(ids, o.Visit.ID)
		}
	}
	return ids
}

// RunArrivals sends m customers to the shop, each after its own random delay
// in [0, maxDelay], and waits for all of them to leave. It does not close
// the shop.
func RunArrivals(s *Shop, m int, maxDelay time.Duration, seed uint64) (*Report, error) {
	var problems []string
	if m < 0 {
		problems = append(problems, fmt.Sprintf("Customers must be at least 0, got %d", m))
	}
	if maxDelay < 0 {
		problems = append(problems, fmt.Sprintf("ArrivalDelay must be at least 0, got %s", maxDelay))
	}
	if len(problems) > 0 {
		return nil, &ConfigError{Problems: problems}
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	r := rand.New(rand.NewPCG(seed, seed<<1|1))
	delays := make([]time.Duration, m)
	for i := range delays {
		delays[i] = between(r, 0, maxDelay)
	}

	report := &Report{Chairs: s.Chairs(), Outcomes: make([]Outcome, m)}
	line := newStartLine(m)
	var g errgroup.Group
	for i := range m {
		g.Go(func() error {
			line.Wait()
			time.Sleep(delays[i])
			v, err := s.Arrive()
			report.Outcomes[i] = Outcome{Visit: v, Err: err}
			if err != nil && !errors.Is(err, ErrAdmissionRejected) {
				return fmt.Errorf("customer %d: %w", v.ID, err)
			}
			return nil
		})
	}
	return report, g.Wait()
}

// Run is the whole day: open, let m customers in, then close once every one
// of them has left.
func Run(cfg Config, opts ...Option) (*Report, error) {
	s, err := NewShop(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Open(); err != nil {
		return nil, err
	}
	report, runErr := RunArrivals(s, cfg.Customers, cfg.ArrivalDelay, cfg.Seed)
	if err := s.Close(); err != nil {
		return report, err
	}
	return report, runErr
}
