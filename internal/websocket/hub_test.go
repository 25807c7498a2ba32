package websocket

import (
	"encoding/json"
	"testing"
	"time"
)

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.Send():
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decoding message: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func TestBroadcastToRoutesByUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := NewClient(hub, "alice")
	bob := NewClient(hub, "bob")
	hub.Register(alice)
	hub.Register(bob)

	b := NewEventBroadcaster(hub)
	b.Reminder("alice", ReminderPayload{EventID: "e1", Title: "Piano", ReminderMinutes: 10})

	msg := receive(t, alice)
	if msg.Type != TypeEventReminder {
		t.Errorf("type = %q", msg.Type)
	}

	select {
	case data := <-bob.Send():
		t.Errorf("bob received %s", data)
	case <-time.After(50 * time.Millisecond):
	}

	hub.Broadcast([]byte(`{"type":"notification","payload":null}`))
	receive(t, alice)
	receive(t, bob)

	if n := hub.UserClientCount("alice"); n != 1 {
		t.Errorf("UserClientCount(alice) = %d", n)
	}

	hub.Unregister(alice)
	if _, ok := <-alice.Send(); ok {
		t.Error("send channel still open after unregister")
	}
	if n := hub.ClientCount(); n != 1 {
		t.Errorf("ClientCount() = %d, want 1", n)
	}
}

func TestNilBroadcasterIsNoop(t *testing.T) {
	var b *EventBroadcaster
	b.Notification("u", "info", "t", "m")
}

func TestReplyAndNotifyAll(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := NewClient(hub, "carol")
	if c.Reply([]byte(`{}`)) {
		t.Error("Reply() succeeded before registration")
	}

	hub.Register(c)
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !c.Reply([]byte(`{"type":"pong"}`)) {
		t.Fatal("Reply() failed for registered client")
	}
	<-c.Send()

	NewEventBroadcaster(hub).NotifyAll("info", "Maintenance", "Redémarrage")
	if msg := receive(t, c); msg.Type != TypeNotification {
		t.Errorf("type = %q", msg.Type)
	}
}
