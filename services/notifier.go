package services

import (
	"context"
	"time"

	"github.com/yeremiapane/comanda-app/store"
)

// Notifier receives events after the transaction that produced them has
// committed. *kds.Hub implements it.
type Notifier interface {
	Publish(restaurantID, event string, data interface{})
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, string, interface{}) {}

type event struct {
	name string
	data interface{}
}

// engine carries what every service needs: the store, the event sink and a
// clock that tests can replace.
type engine struct {
	store    store.Store
	notifier Notifier
	now      func() time.Time
}

func newEngine(s store.Store, n Notifier) engine {
	if n == nil {
		n = nopNotifier{}
	}
	return engine{store: s, notifier: n, now: time.Now}
}

// SetClock replaces the time source.
func (e *engine) SetClock(now func() time.Time) { e.now = now }

// atomic runs fn in one tenant transaction and publishes the events fn
// queued only when it committed.
func (e *engine) atomic(ctx context.Context, tenantID string, fn func(repo store.Repository, emit func(name string, data interface{})) error) error {
	var events []event
	err := e.store.Atomic(ctx, tenantID, func(repo store.Repository) error {
		events = events[:0]
		return fn(repo, func(name string, data interface{}) {
			events = append(events, event{name: name, data: data})
		})
	})
	if err != nil {
		return err
	}
	for _, ev := range events {
		e.notifier.Publish(tenantID, ev.name, ev.data)
	}
	return nil
}
