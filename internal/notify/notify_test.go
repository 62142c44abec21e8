package notify

import (
	"testing"
	"time"
)

func TestGuardedDelivers(t *testing.T) {
	got := make(chan string, 1)
	n := Guarded(Func(func(title, message string) {
		got <- title + ": " + message
	}), time.Second)

	n.Notify("Croki", "Time to practice.")

	select {
	case msg := <-got:
		if msg != "Croki: Time to practice." {
			t.Errorf("delivered %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("notification never delivered")
	}
}

func TestGuardedAbandonsSlowNotifier(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	n := Guarded(Func(func(string, string) { <-block }), 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		n.Notify("Croki", "stuck")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked past the timeout")
	}
}

func TestGuardedSwallowsPanic(t *testing.T) {
	n := Guarded(Func(func(string, string) { panic("toast backend gone") }), time.Second)
	n.Notify("Croki", "boom")
}

func TestGuardedNilInner(t *testing.T) {
	Guarded(nil, time.Second).Notify("Croki", "no-op")
}
