package realtime

import (
	"encoding/json"
	"sync"
	"testing"
)

func drain(sub *Subscriber) []Event {
	var events []Event
	for {
		select {
		case ev := <-sub.Events():
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestPublish_OnlyJoinedSubscribersReceive(t *testing.T) {
	hub := NewHub()

	joined := hub.Subscribe(4)
	stranger := hub.Subscribe(4)

	hub.Join(1, joined)

	hub.Publish(1, nil, Event{Type: EventTaskCreated})

	if got := drain(joined); len(got) != 1 || got[0].Type != EventTaskCreated {
		t.Errorf("joined subscriber events = %v, expected one task-created", got)
	}
	if got := drain(stranger); len(got) != 0 {
		t.Errorf("subscriber that never joined received %d events", len(got))
	}
}

func TestPublish_ExcludesSender(t *testing.T) {
	hub := NewHub()

	sender := hub.Subscribe(4)
	receiver := hub.Subscribe(4)

	hub.Join(1, sender)
	hub.Join(1, receiver)

	hub.Publish(1, sender, Event{Type: EventTaskUpdated})

	if got := drain(sender); len(got) != 0 {
		t.Errorf("sender received its own event: %v", got)
	}
	if got := drain(receiver); len(got) != 1 {
		t.Errorf("receiver events = %v, expected one", got)
	}
}

func TestPublish_ChannelIsolation(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe(4)
	hub.Join(1, sub)

	hub.Publish(2, nil, Event{Type: EventTaskDeleted})

	if got := drain(sub); len(got) != 0 {
		t.Errorf("subscriber of channel 1 received events from channel 2: %v", got)
	}
}

func TestLeave_StopsDelivery(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe(4)
	hub.Join(1, sub)
	hub.Leave(1, sub)

	hub.Publish(1, nil, Event{Type: EventTaskStateChanged})

	if got := drain(sub); len(got) != 0 {
		t.Errorf("subscriber received %d events after leaving", len(got))
	}
	if hub.Joined(1, sub) {
		t.Error("Joined() should be false after Leave()")
	}
}

func TestDisconnect_RemovesFromAllChannels(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe(4)
	hub.Join(1, sub)
	hub.Join(2, sub)

	hub.Disconnect(sub)

	hub.Publish(1, nil, Event{Type: EventTaskCreated})
	hub.Publish(2, nil, Event{Type: EventTaskCreated})

	if got := drain(sub); len(got) != 0 {
		t.Errorf("disconnected subscriber received %d events", len(got))
	}

	select {
	case <-sub.Done():
	default:
		t.Error("Done() should be closed after Disconnect()")
	}

	// second disconnect must not panic
	hub.Disconnect(sub)
}

func TestPublish_DropsWhenBufferFull(t *testing.T) {
	hub := NewHub()

	slow := hub.Subscribe(2)
	hub.Join(1, slow)

	for i := 0; i < 5; i++ {
		hub.Publish(1, nil, Event{Type: EventTaskUpdated})
	}

	if got := drain(slow); len(got) != 2 {
		t.Errorf("slow subscriber buffered %d events, expected 2 (rest dropped)", len(got))
	}
}

func TestPublish_CarriesTaskPayload(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe(4)
	hub.Join(7, sub)

	payload := json.RawMessage(`{"id":3,"name":"ship it","project":{"id":7}}`)
	hub.Publish(7, nil, Event{Type: EventTaskCreated, Task: payload})

	got := drain(sub)
	if len(got) != 1 {
		t.Fatalf("events = %d, expected 1", len(got))
	}
	if string(got[0].Task) != string(payload) {
		t.Errorf("task payload altered in flight: %s", got[0].Task)
	}
}

func TestSubscriberSend(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe(2)

	// direct sends reach the subscriber without any channel membership
	if !sub.Send(Event{Type: "connected"}) {
		t.Error("Send() should accept an event into a free buffer")
	}
	if !sub.Send(Event{Type: "joined", Project: 1}) {
		t.Error("Send() should accept a second event into a free buffer")
	}
	if sub.Send(Event{Type: "joined", Project: 2}) {
		t.Error("Send() should report a drop when the buffer is full")
	}

	got := drain(sub)
	if len(got) != 2 || got[0].Type != "connected" || got[1].Type != "joined" {
		t.Errorf("delivered events = %v", got)
	}
}

func TestHub_ConcurrentJoinLeavePublish(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			sub := hub.Subscribe(8)
			projectID := uint(n%4 + 1)

			hub.Join(projectID, sub)
			hub.Publish(projectID, sub, Event{Type: EventTaskUpdated})
			hub.Leave(projectID, sub)
			hub.Publish(projectID, nil, Event{Type: EventTaskUpdated})
			hub.Disconnect(sub)
		}(i)
	}

	wg.Wait()
}
