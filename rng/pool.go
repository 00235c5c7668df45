package rng

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"
	"time"
)

// Pool is an entropy accumulator in the spirit of Fortuna, reduced to a
// single pool. Samples are hashed into the pool state; output is drawn from
// the pool in counter mode. A background sampler can feed it timing jitter.
type Pool struct {
	mu      sync.Mutex
	state   [sha256.Size]byte
	counter uint64
	buf     []byte

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool creates a pool optionally primed with initial seed material.
func NewPool(seed []byte) *Pool {
	p := &Pool{}
	if len(seed) > 0 {
		p.Add(seed)
	}
	return p
}

// Add mixes a sample into the pool state.
func (p *Pool) Add(sample []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := sha256.New()
	h.Write(p.state[:])
	h.Write(sample)
	h.Sum(p.state[:0])
}

// Seed replaces any accumulated entropy with the given seed material.
func (p *Pool) Seed(seed []byte) {
	p.mu.Lock()
	p.state = sha256.Sum256(seed)
	p.counter = 0
	p.buf = nil
	p.mu.Unlock()
}

// Next returns the next output byte.
func (p *Pool) Next() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.buf) == 0 {
		var block [sha256.Size + 8]byte
		copy(block[:], p.state[:])
		binary.BigEndian.PutUint64(block[sha256.Size:], p.counter)
		p.counter++
		sum := sha256.Sum256(block[:])
		p.buf = sum[:]
	}
	b := p.buf[0]
	p.buf = p.buf[1:]
	return b
}

// StartSampling launches a background goroutine that periodically mixes
// scheduling jitter into the pool until StopSampling is called or the
// context is cancelled.
func (p *Pool) StartSampling(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				var sample [8]byte
				binary.BigEndian.PutUint64(sample[:], uint64(now.UnixNano()))
				p.Add(sample[:])
			}
		}
	}()
}

// StopSampling stops the background sampler and waits for it to exit.
func (p *Pool) StopSampling() {
	if p.cancel != nil {
		p.cancel()
		p.wg.Wait()
		p.cancel = nil
	}
}
