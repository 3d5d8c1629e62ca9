package barbershop

import "sync"

// startLine holds customer goroutines until all of them are spawned, then
// lets them walk in together so admissions really race.
type startLine struct {
	mu      sync.Mutex
	want    int
	arrived int
	release chan struct{}
}

func newStartLine(n int) *startLine {
	l := &startLine{want: n, release: make(chan struct{})}
	if n <= 0 {
		close(l.release)
	}
	return l
}

// Wait blocks until want callers have reached the line. The last one in
// opens it for everybody, including later callers.
func (l *startLine) Wait() {
	l.mu.Lock()
	l.arrived++
	if l.arrived == l.want {
		close(l.release)
	}
	l.mu.Unlock()
	<-l.release
}
