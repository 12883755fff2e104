package telemetry

import (
	"testing"
	"time"
)

func TestHubRegisterAndPublish(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	ch := make(chan Event, 10)
	hub.Register("client1", ch)
	time.Sleep(10 * time.Millisecond)

	hub.Publish(Event{Kind: "state", Line: "STATE: +toner-low-report"})

	select {
	case ev := <-ch:
		if ev.Kind != "state" || ev.Line != "STATE: +toner-low-report" {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("did not receive published event")
	}

	hub.Unregister("client1")
	time.Sleep(10 * time.Millisecond)
	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after unregister")
	}
}

func TestDeliverStateEvictsOldestOnFullBuffer(t *testing.T) {
	ch := make(chan Event, 1)
	ch <- Event{Kind: "discovery", Line: "stale"}

	deliver(ch, Event{Kind: "state", Line: "STATE: +media-empty-warning"})

	got := <-ch
	if got.Kind != "state" || got.Line != "STATE: +media-empty-warning" {
		t.Fatalf("expected state event to evict the stale one, got %+v", got)
	}
}

func TestDeliverNonStateDroppedOnFullBuffer(t *testing.T) {
	ch := make(chan Event, 1)
	ch <- Event{Kind: "discovery", Line: "first"}

	deliver(ch, Event{Kind: "attr", Line: "ATTR: marker-levels=50"})

	got := <-ch
	if got.Kind != "discovery" || got.Line != "first" {
		t.Fatalf("expected non-state event to be dropped, buffer still holds %+v", got)
	}
	select {
	case extra := <-ch:
		t.Fatalf("expected buffer to hold only one event, also got %+v", extra)
	default:
	}
}

func TestHubPublishFansOutToAllClients(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	const n = 3
	chans := make([]chan Event, n)
	for i := range chans {
		chans[i] = make(chan Event, 10)
		hub.Register(string(rune('A'+i)), chans[i])
	}
	time.Sleep(20 * time.Millisecond)

	hub.Publish(Event{Kind: "attr", Line: "ATTR: marker-levels=50"})

	for i, ch := range chans {
		select {
		case ev := <-ch:
			if ev.Line != "ATTR: marker-levels=50" {
				t.Errorf("client %d: unexpected line %q", i, ev.Line)
			}
		case <-time.After(200 * time.Millisecond):
			t.Errorf("client %d: did not receive event", i)
		}
	}
}
