//go:build !integration

package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTriggerCoalescesRapidCalls(t *testing.T) {
	d := New(30 * time.Millisecond)

	var calls int32
	for i := 0; i < 5; i++ {
		d.Trigger(func(gen uint64) {
			atomic.AddInt32(&calls, 1)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly 1 callback, got %d", got)
	}
}

func TestCancelDropsPendingRun(t *testing.T) {
	d := New(20 * time.Millisecond)

	var calls int32
	d.Trigger(func(gen uint64) {
		atomic.AddInt32(&calls, 1)
	})
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("expected no callback after cancel, got %d", got)
	}
}

func TestLiveReportsSupersededGenerations(t *testing.T) {
	d := New(10 * time.Millisecond)

	first := d.Trigger(func(gen uint64) {})
	second := d.Trigger(func(gen uint64) {})

	if d.Live(first) {
		t.Error("superseded generation should not be live")
	}
	if !d.Live(second) {
		t.Error("latest generation should be live")
	}

	d.Cancel()
	if d.Live(second) {
		t.Error("cancel should invalidate the latest generation")
	}
}
