package barbershop

import (
	"errors"
	"time"
)

// serve is the barber goroutine. It is the only path to Closed.
func (s *Shop) serve() {
	defer close(s.done)
	for {
		item, ok := s.next()
		if !ok {
			break
		}
		s.cut(item)
	}
	s.setBarber(Terminated)
	s.state.advance(Closing, Closed)
	s.log.Info().Msg("barber goes home, shop closed")
}

// next drains the waiting room, parking on an empty one until a customer
// sits down or the shop closes. ok is false only when the shop is closing and
// no chair is occupied.
func (s *Shop) next() (*WorkItem, bool) {
	s.setBarber(Draining)
	if item, ok := s.queue.TryDequeue(); ok {
		return item, true
	}

	s.setBarber(Idle)
	s.log.Debug().Msg("no customers, barber sleeps")
	item, err := s.queue.Dequeue()
	if errors.Is(err, ErrQueueClosed) {
		return nil, false
	}
	s.log.Debug().Int("customer", item.ID).Msg("barber wakes up")
	return item, true
}

func (s *Shop) cut(item *WorkItem) {
	<-item.seated
	s.setBarber(Busy)

	s.turns++
	item.turn = s.turns
	item.startedAt = time.Now()
	s.log.Info().
		Int("customer", item.ID).
		Uint64("seq", item.Seq).
		Int("waiting", s.queue.Size()).
		Msg("barber starts cutting hair")
	s.service(item)
	item.finishedAt = time.Now()

	s.metrics.serviceTime.Observe(item.finishedAt.Sub(item.startedAt).Seconds())
	s.metrics.serviced.Inc()
	s.log.Info().
		Int("customer", item.ID).
		Dur("took", item.finishedAt.Sub(item.startedAt)).
		Msg("barber finishes a haircut")
	item.complete()
}
