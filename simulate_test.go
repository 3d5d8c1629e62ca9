package barbershop

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunArrivalsProperties(t *testing.T) {
	tests := []struct {
		chairs, customers int
		delay             time.Duration
	}{
		{1, 0, 0},
		{1, 1, 0},
		{1, 5, 0},
		{3, 20, 0},
		{5, 50, time.Millisecond},
		{10, 10, 0},
		{2, 100, 2 * time.Millisecond},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("N=%d,M=%d", tc.chairs, tc.customers), func(t *testing.T) {
			cfg := testConfig(tc.chairs)
			cfg.ServiceMin = 0
			cfg.ServiceMax = 200 * time.Microsecond
			cfg.Seed = 42
			s, err := NewShop(cfg)
			require.NoError(t, err)
			require.NoError(t, s.Open())

			report, err := RunArrivals(s, tc.customers, tc.delay, 7)
			require.NoError(t, err)
			waitClose(t, s)

			served, rejected := report.Served(), report.Rejected()
			require.Len(t, report.Outcomes, tc.customers)
			assert.Equal(t, tc.customers, len(served)+len(rejected))
			if tc.customers > 0 {
				assert.NotEmpty(t, served, "an empty shop always seats the first customer")
			}

			ids := make(map[int]bool)
			for i, v := range served {
				assert.Equal(t, uint64(i+1), v.Turn, "served exactly once, in turn")
				assert.False(t, ids[v.ID], "customer %d served twice", v.ID)
				ids[v.ID] = true
				if i > 0 {
					assert.Greater(t, v.Seq, served[i-1].Seq, "admitted earlier is served earlier")
				}
			}
			for _, id := range rejected {
				assert.False(t, ids[id], "customer %d both served and rejected", id)
			}

			assert.Equal(t, float64(tc.customers), testutil.ToFloat64(s.metrics.arrivals))
			assert.Equal(t, float64(len(served)), testutil.ToFloat64(s.metrics.admitted))
			assert.Equal(t, float64(len(served)), testutil.ToFloat64(s.metrics.serviced))
			assert.Equal(t, float64(len(rejected)), testutil.ToFloat64(s.metrics.rejected.WithLabelValues("no_chairs")))
			assert.Zero(t, testutil.ToFloat64(s.metrics.queueLength))
			assert.Equal(t, Closed, s.State())
		})
	}
}

type logLine struct {
	Message  string `json:"message"`
	Customer int    `json:"customer"`
}

func readLog(t *testing.T, buf *bytes.Buffer) []logLine {
	t.Helper()
	var lines []logLine
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var l logLine
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l), sc.Text())
		lines = append(lines, l)
	}
	require.NoError(t, sc.Err())
	return lines
}

// Log order is what users rely on: a customer sits before the haircut
// starts, and the shop closes after the last haircut finishes.
func TestRunLogOrdering(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(2)
	cfg.Customers = 30
	cfg.ServiceMin = 0
	cfg.ServiceMax = time.Millisecond
	cfg.ArrivalDelay = 3 * time.Millisecond
	cfg.Seed = 3

	report, err := Run(cfg, WithLogger(zerolog.New(zerolog.SyncWriter(&buf))))
	require.NoError(t, err)
	lines := readLog(t, &buf)
	require.NotEmpty(t, lines)

	sat := map[int]int{}
	started := map[int]int{}
	finished := map[int]int{}
	closing, closed := -1, -1
	for i, l := range lines {
		switch l.Message {
		case "customer sits in the waiting area":
			sat[l.Customer] = i
		case "barber starts cutting hair":
			started[l.Customer] = i
		case "barber finishes a haircut":
			finished[l.Customer] = i
		case "no more customers, shop closing":
			closing = i
		case "barber goes home, shop closed":
			closed = i
		}
	}

	require.NotEqual(t, -1, closing)
	require.Equal(t, len(lines)-1, closed, "shop closed must be the last line")
	assert.Len(t, finished, len(report.Served()))
	for id, at := range started {
		assert.Less(t, sat[id], at, "customer %d served before sitting down", id)
		assert.Less(t, at, finished[id], "customer %d finished before starting", id)
	}
	for id, at := range finished {
		assert.Less(t, at, closed, "customer %d finished after close", id)
	}
	for id, at := range sat {
		assert.Less(t, at, closing, "customer %d admitted after closing", id)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	_, err := Run(Config{Chairs: -1, Customers: 3})
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Error(), "Chairs")
}

func TestRunArrivalsRejectsBadCounts(t *testing.T) {
	s := newTestShop(t, 1)
	_, err := RunArrivals(s, -1, -time.Second, 1)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Len(t, cerr.Problems, 2)
	assert.Contains(t, cerr.Error(), "Customers must be at least 0")
	assert.Zero(t, testutil.ToFloat64(s.metrics.arrivals))
	waitClose(t, s)
}

func TestStartLineReleasesTogether(t *testing.T) {
	l := newStartLine(3)
	passed := make(chan struct{}, 3)
	for i := 0; i < 2; i++ {
		go func() {
			l.Wait()
			passed <- struct{}{}
		}()
	}
	select {
	case <-passed:
		t.Fatalf("start line opened early")
	case <-time.After(50 * time.Millisecond):
	}

	l.Wait()
	for i := 0; i < 2; i++ {
		select {
		case <-passed:
		case <-time.After(time.Second):
			t.Fatalf("waiter %d never released", i)
		}
	}
	// later callers are not held
	l.Wait()
	newStartLine(0).Wait()
}
