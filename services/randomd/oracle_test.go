package randomd

import (
	"math/big"
	"sync"
	"testing"
	"time"
)

type recordingFulfiller struct {
	mu    sync.Mutex
	calls []fulfillCall
	done  chan struct{}
}

type fulfillCall struct {
	caller    [20]byte
	requestID uint64
	words     []*big.Int
}

func newRecordingFulfiller(expected int) *recordingFulfiller {
	return &recordingFulfiller{done: make(chan struct{}, expected)}
}

func (f *recordingFulfiller) Fulfill(caller [20]byte, requestID uint64, words []*big.Int) (*big.Int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fulfillCall{caller: caller, requestID: requestID, words: words})
	f.mu.Unlock()
	f.done <- struct{}{}
	return big.NewInt(500), nil
}

func (f *recordingFulfiller) wait(t *testing.T) fulfillCall {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(5 * time.Second):
		t.Fatal("fulfillment never arrived")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func TestRequestAssignsSequentialIDs(t *testing.T) {
	var coordinator [20]byte
	coordinator[19] = 0xCC
	sink := newRecordingFulfiller(2)
	oracle := New(coordinator, sink, nil, Options{MinDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond})
	defer oracle.Close()

	first, err := oracle.RequestRandomness()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	second, err := oracle.RequestRandomness()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if first != 1 || second != 2 {
		t.Fatalf("ids = %d, %d", first, second)
	}
}

func TestFulfillsAsCoordinator(t *testing.T) {
	var coordinator [20]byte
	coordinator[19] = 0xCC
	sink := newRecordingFulfiller(1)
	oracle := New(coordinator, sink, nil, Options{MinDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond})
	defer oracle.Close()

	id, err := oracle.RequestRandomness()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	call := sink.wait(t)
	if call.caller != coordinator {
		t.Fatal("fulfilled from the wrong address")
	}
	if call.requestID != id {
		t.Fatalf("request id = %d, want %d", call.requestID, id)
	}
	if len(call.words) != 1 || call.words[0] == nil || call.words[0].Sign() < 0 {
		t.Fatalf("words = %v", call.words)
	}
}

func TestCloseCancelsPending(t *testing.T) {
	sink := newRecordingFulfiller(1)
	oracle := New([20]byte{}, sink, nil, Options{MinDelay: time.Hour, MaxDelay: time.Hour})
	if _, err := oracle.RequestRandomness(); err != nil {
		t.Fatalf("request: %v", err)
	}

	done := make(chan struct{})
	go func() {
		oracle.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.calls) != 0 {
		t.Fatalf("canceled request still fulfilled: %d calls", len(sink.calls))
	}
}
