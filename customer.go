package barbershop

import (
	"errors"
	"time"
)

// Visit is what a customer takes home.
type Visit struct {
	ID         int
	Seq        uint64 // admission order, zero when rejected
	Turn       uint64 // service order, zero when rejected
	ArrivedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// Waited is how long the customer sat before the haircut began.
func (v Visit) Waited() time.Duration {
	if v.StartedAt.IsZero() {
		return 0
	}
	return v.StartedAt.Sub(v.ArrivedAt)
}

// Arrive walks one customer in. If no chair is free the customer leaves at
// once with ErrNoChairs; otherwise Arrive returns after that customer's own
// haircut is finished. There is no retry.
func (s *Shop) Arrive() (Visit, error) {
	item := newWorkItem(int(s.nextID.Add(1)))
	v := Visit{ID: item.ID, ArrivedAt: item.ArrivedAt}
	s.metrics.arrivals.Inc()
	s.log.Info().Int("customer", item.ID).Msg("customer arrives")

	if err := s.queue.Offer(item); err != nil {
		if errors.Is(err, ErrQueueFull) {
			s.metrics.rejected.WithLabelValues("no_chairs").Inc()
			s.log.Info().Int("customer", item.ID).Msg("customer leaves, no chairs")
			return v, ErrNoChairs
		}
		s.metrics.rejected.WithLabelValues("closed").Inc()
		s.log.Info().Int("customer", item.ID).Msg("customer leaves, shop is closed")
		return v, ErrShopClosed
	}

	s.metrics.admitted.Inc()
	s.log.Info().
		Int("customer", item.ID).
		Uint64("seq", item.Seq).
		Msg("customer sits in the waiting area")
	item.seat()

	<-item.Done()
	v.Seq = item.Seq
	v.Turn = item.turn
	v.StartedAt = item.startedAt
	v.FinishedAt = item.finishedAt
	s.log.Debug().Int("customer", item.ID).Msg("customer leaves with a haircut")
	return v, nil
}
