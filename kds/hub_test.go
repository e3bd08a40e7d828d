package kds

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	fail     bool
	closed   bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, 0, len(c.messages))
	for _, raw := range c.messages {
		var m Message
		if err := json.Unmarshal(raw, &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

func TestPublishIsScopedToRestaurant(t *testing.T) {
	hub := NewHub()
	kitchenA := &fakeConn{}
	kitchenB := &fakeConn{}
	hub.Register(kitchenA, "rest-a", "KITCHEN")
	hub.Register(kitchenB, "rest-b", "KITCHEN")

	hub.Publish("rest-a", EventOrderCreated, map[string]string{"id": "o1"})

	got := kitchenA.received()
	require.Len(t, got, 1)
	assert.Equal(t, EventOrderCreated, got[0].Event)
	assert.Equal(t, "rest-a", got[0].RestaurantID)
	assert.Empty(t, kitchenB.received())
}

func TestFailingClientIsDropped(t *testing.T) {
	hub := NewHub()
	broken := &fakeConn{fail: true}
	hub.Register(broken, "rest-a", "WAITER")
	assert.Equal(t, 1, hub.ClientCount("rest-a"))

	hub.Publish("rest-a", EventTableUpdated, nil)

	assert.Equal(t, 0, hub.ClientCount("rest-a"))
	assert.True(t, broken.closed)
}

// stalledConn blocks every write until release is closed.
type stalledConn struct {
	fakeConn
	started  chan struct{}
	release  chan struct{}
	once     sync.Once
	deadline time.Time
}

func newStalledConn() *stalledConn {
	return &stalledConn{started: make(chan struct{}), release: make(chan struct{})}
}

func (c *stalledConn) WriteMessage(messageType int, data []byte) error {
	c.once.Do(func() { close(c.started) })
	<-c.release
	return c.fakeConn.WriteMessage(messageType, data)
}

func (c *stalledConn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadline = t
	return nil
}

func TestStalledClientDoesNotBlockOtherRestaurants(t *testing.T) {
	hub := NewHub()
	stalled := newStalledConn()
	other := &fakeConn{}
	hub.Register(stalled, "rest-a", "KITCHEN")
	hub.Register(other, "rest-b", "KITCHEN")

	done := make(chan struct{})
	go func() {
		hub.Publish("rest-a", EventOrderCreated, nil)
		close(done)
	}()
	<-stalled.started

	hub.Publish("rest-b", EventOrderCreated, nil)
	assert.Len(t, other.received(), 1)
	hub.Register(&fakeConn{}, "rest-b", "WAITER")
	assert.Equal(t, 2, hub.ClientCount("rest-b"))

	close(stalled.release)
	<-done
	assert.Len(t, stalled.received(), 1)

	stalled.mu.Lock()
	deadline := stalled.deadline
	stalled.mu.Unlock()
	assert.WithinDuration(t, time.Now().Add(writeWait), deadline, writeWait)
}

func TestUnregisterClosesConnection(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.Register(conn, "rest-a", "ADMIN")
	hub.Unregister(conn)

	assert.True(t, conn.closed)
	assert.Equal(t, 0, hub.ClientCount("rest-a"))
}

func TestRedisRelayDeliversThroughChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	hub := NewHub()
	conn := &fakeConn{}
	hub.Register(conn, "rest-a", "KITCHEN")

	relay := NewRedisRelay(client, "comanda:test")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan struct{})
	go relay.Run(ctx, hub, ready)

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not subscribe")
	}
	hub.SetRelay(relay)

	hub.Publish("rest-a", EventTabOpened, map[string]string{"code": "C001"})

	assert.Eventually(t, func() bool {
		return len(conn.received()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, EventTabOpened, conn.received()[0].Event)
}

func TestPublishFallsBackWhenRelayFails(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	hub := NewHub()
	conn := &fakeConn{}
	hub.Register(conn, "rest-a", "KITCHEN")
	hub.SetRelay(NewRedisRelay(client, "comanda:test"))

	hub.Publish("rest-a", EventStockLow, nil)

	assert.Len(t, conn.received(), 1)
}
