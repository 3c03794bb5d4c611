package viewport

import (
	"sync"

	"github.com/matzehuels/spaceview/pkg/lod"
	"github.com/matzehuels/spaceview/pkg/observability"
	"github.com/matzehuels/spaceview/pkg/sizetree"
)

// garbage is a replaced tree pair.
type garbage struct {
	size   *sizetree.Tree
	layout *lod.Tree
}

// disposer releases replaced trees off the frame goroutine. send never
// blocks: when the worker is still busy a one-shot goroutine takes the
// batch instead.
type disposer struct {
	ch chan garbage
	wg sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func newDisposer() *disposer {
	d := &disposer{ch: make(chan garbage, 1)}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for g := range d.ch {
			release(g)
		}
	}()
	return d
}

func (d *disposer) send(g garbage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		release(g)
		return
	}
	select {
	case d.ch <- g:
	default:
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			release(g)
		}()
	}
}

// close stops the worker and waits for every pending release.
func (d *disposer) close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func release(g garbage) {
	n := lod.Release(g.layout)
	observability.Viewport().OnDispose(n)
}
