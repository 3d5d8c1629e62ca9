package barbershop

import (
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// BarberShop is the mutation surface shared by the barber, the arrivals
// and whoever closes the shop.
type BarberShop interface {
	Open() error
	Arrive() (Visit, error)
	Close() error

	State() ShopState
	BarberState() BarberState
	Waiting() int
	Chairs() int
	Done() <-chan struct{}
}

var _ BarberShop = (*Shop)(nil)

// Shop is the one context object every goroutine of a run shares.
type Shop struct {
	cfg     Config
	queue   *BoundedQueue
	state   shopState
	barber  atomic.Int32 // BarberState
	nextID  atomic.Int64
	log     zerolog.Logger
	reg     prometheus.Registerer
	metrics *shopMetrics
	service func(*WorkItem)
	turns   uint64 // barber goroutine only

	lifecycle sync.Mutex // serializes Open against the first Close
	opened    bool
	closing   bool
	done      chan struct{}
}

// Option customizes a Shop.
type Option func(*Shop)

// WithLogger sets the logger for lifecycle events. The default discards them.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Shop) { s.log = l }
}

// WithRegisterer registers the shop metrics on reg instead of a private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Shop) { s.reg = reg }
}

// WithService replaces the simulated haircut. fn runs on the barber
// goroutine with no lock held.
func WithService(fn func(*WorkItem)) Option {
	return func(s *Shop) { s.service = fn }
}

// NewShop validates cfg and builds a shop that has not opened yet.
func NewShop(cfg Config, opts ...Option) (*Shop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Shop{
		cfg:   cfg,
		queue: NewBoundedQueue(cfg.Chairs),
		log:   zerolog.Nop(),
		done:  make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if s.reg == nil {
		s.reg = prometheus.NewRegistry()
	}
	if s.service == nil {
		s.service = sleepService(cfg.ServiceMin, cfg.ServiceMax, cfg.Seed)
	}
	s.metrics = newShopMetrics(s.reg, cfg.Chairs)
	s.queue.checkInvariants = cfg.CheckInvariants
	s.queue.onResize = func(n int) { s.metrics.queueLength.Set(float64(n)) }
	s.barber.Store(int32(Idle))
	return s, nil
}

// Open starts the barber. It may be called once.
func (s *Shop) Open() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.closing {
		return ErrShopClosed
	}
	if s.opened {
		return ErrAlreadyOpen
	}
	s.opened = true
	s.log.Info().Int("chairs", s.cfg.Chairs).Msg("shop opens")
	go s.serve()
	return nil
}

// Close announces that no more customers will come, wakes a sleeping barber
// and waits until everybody still seated has been served. A shop that was
// never opened gets a barber just to drain its chairs. Calling Close again is
// a no-op.
func (s *Shop) Close() error {
	s.lifecycle.Lock()
	if !s.closing {
		s.closing = true
		s.state.advance(Open, Closing)
		s.log.Info().Int("waiting", s.queue.Size()).Msg("no more customers, shop closing")
		s.queue.Close()
		if !s.opened {
			s.opened = true
			go s.serve()
		}
	}
	s.lifecycle.Unlock()

	<-s.done
	return nil
}

// Done is closed once the barber has gone home.
func (s *Shop) Done() <-chan struct{} {
	return s.done
}

func (s *Shop) State() ShopState {
	return s.state.load()
}

func (s *Shop) BarberState() BarberState {
	return BarberState(s.barber.Load())
}

// Waiting is an advisory snapshot of occupied chairs.
func (s *Shop) Waiting() int {
	return s.queue.Size()
}

func (s *Shop) Chairs() int {
	return s.queue.Cap()
}

func (s *Shop) setBarber(st BarberState) {
	s.barber.Store(int32(st))
}

func sleepService(lo, hi time.Duration, seed uint64) func(*WorkItem) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	r := rand.New(rand.NewPCG(seed, seed>>1|1))
	return func(*WorkItem) {
		time.Sleep(between(r, lo, hi))
	}
}

func between(r *rand.Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	span := int64(hi - lo)
	if span < math.MaxInt64 {
		span++
	}
	return lo + time.Duration(r.Int64N(span))
}
