package notify

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubLocalDelivery(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("race-1")
	other := hub.Register("race-2")

	hub.PlanRecomputed("race-1", []byte(`{"race_id":"race-1"}`))

	select {
	case msg := <-client.Send:
		if string(msg) != `{"race_id":"race-1"}` {
			t.Fatalf("unexpected payload: %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("subscriber never received the event")
	}

	select {
	case msg := <-other.Send:
		t.Fatalf("race-2 subscriber should not receive race-1 events, got %s", msg)
	default:
	}

	hub.Unregister(client)
	hub.Unregister(other)
}

func TestHubUnregisterClosesChannel(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("race-1")
	hub.Unregister(client)

	if _, open := <-client.Send; open {
		t.Fatalf("send channel must be closed on unregister")
	}

	// Broadcasting after unregister must not panic.
	hub.PlanRecomputed("race-1", []byte("x"))
}

func TestHubSlowClientSkipped(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("race-1")
	defer hub.Unregister(client)

	for i := 0; i < 100; i++ {
		hub.PlanRecomputed("race-1", []byte("event"))
	}
	// The buffered channel filled up; the hub must not have blocked.
	if len(client.Send) != cap(client.Send) {
		t.Fatalf("expected a full buffer, got %d", len(client.Send))
	}
}

func TestHubPublishesToRedis(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer rdb.Close()

	hub := NewHub(rdb)
	client := hub.Register("race-1")
	defer hub.Unregister(client)

	hub.PlanRecomputed("race-1", []byte("event"))

	select {
	case <-client.Send:
	case <-time.After(time.Second):
		t.Fatalf("local delivery should not depend on redis")
	}
}

func TestChannelNameRoundTrip(t *testing.T) {
	if got := raceIDFromChannel(redisChannel("abc")); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
	if got := raceIDFromChannel("garbage"); got != "" {
		t.Fatalf("expected empty for malformed channel, got %q", got)
	}
}
