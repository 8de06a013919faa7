// Package randomd provides the in-process development randomness oracle. It
// satisfies the coordinator contract the boost engine expects: requests are
// acknowledged synchronously with a request id and fulfilled later from a
// background goroutine with entropy drawn from crypto/rand.
package randomd

import (
	"crypto/rand"
	"log/slog"
	"math/big"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Fulfiller consumes the delayed randomness callback. In production the
// coordinator is an external service calling over RPC; here it is the boost
// engine directly.
type Fulfiller interface {
	Fulfill(caller [20]byte, requestID uint64, randomWords []*big.Int) (*big.Int, error)
}

// Options tunes the simulated oracle latency. NextID, when set, supplies
// request ids from a persistent sequence; the default is an in-memory counter.
type Options struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	NextID   func() (uint64, error)
}

// Oracle is the local dev coordinator. Every request is fulfilled exactly
// once after a randomized delay.
type Oracle struct {
	addr      [20]byte
	fulfiller Fulfiller
	log       *slog.Logger
	minDelay  time.Duration
	maxDelay  time.Duration
	nextID    func() (uint64, error)

	mu  sync.Mutex
	seq uint64

	wg     sync.WaitGroup
	closed chan struct{}
}

// New creates an oracle that fulfills as the given coordinator address.
func New(addr [20]byte, fulfiller Fulfiller, log *slog.Logger, opts Options) *Oracle {
	if opts.MinDelay <= 0 {
		opts.MinDelay = 50 * time.Millisecond
	}
	if opts.MaxDelay < opts.MinDelay {
		opts.MaxDelay = opts.MinDelay
	}
	if log == nil {
		log = slog.Default()
	}
	return &Oracle{
		addr:      addr,
		fulfiller: fulfiller,
		log:       log,
		minDelay:  opts.MinDelay,
		maxDelay:  opts.MaxDelay,
		nextID:    opts.NextID,
		closed:    make(chan struct{}),
	}
}

// RequestRandomness assigns a request id and schedules the fulfillment.
func (o *Oracle) RequestRandomness() (uint64, error) {
	var id uint64
	if o.nextID != nil {
		allocated, err := o.nextID()
		if err != nil {
			return 0, err
		}
		id = allocated
	} else {
		o.mu.Lock()
		o.seq++
		id = o.seq
		o.mu.Unlock()
	}

	correlation := uuid.NewString()
	delay := o.minDelay
	if span := o.maxDelay - o.minDelay; span > 0 {
		delay += time.Duration(mrand.Int63n(int64(span)))
	}
	o.log.Info("randomness requested", "request_id", id, "correlation", correlation, "delay", delay)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		select {
		case <-time.After(delay):
		case <-o.closed:
			return
		}
		word, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 256))
		if err != nil {
			o.log.Error("entropy source failed", "request_id", id, "correlation", correlation, "err", err)
			return
		}
		total, err := o.fulfiller.Fulfill(o.addr, id, []*big.Int{word})
		if err != nil {
			o.log.Error("fulfillment rejected", "request_id", id, "correlation", correlation, "err", err)
			return
		}
		o.log.Info("randomness fulfilled", "request_id", id, "correlation", correlation, "reward", total.String())
	}()
	return id, nil
}

// Close stops scheduling and waits for in-flight fulfillments.
func (o *Oracle) Close() {
	close(o.closed)
	o.wg.Wait()
}
