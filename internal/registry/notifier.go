package registry

import (
	"fmt"
	"reflect"
	"sync"

	"quiver/internal/api"
	"quiver/pkg/logging"
)

// notifier is the synchronous observer list attached to a registry.
type notifier struct {
	mu        sync.RWMutex
	listeners []api.EventListener
}

func (n *notifier) add(l api.EventListener) {
	if l == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.indexOf(l) >= 0 {
		return
	}
	n.listeners = append(n.listeners, l)
}

func (n *notifier) remove(l api.EventListener) {
	if l == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if i := n.indexOf(l); i >= 0 {
		n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
	}
}

func (n *notifier) len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// indexOf must be called with mu held.
func (n *notifier) indexOf(l api.EventListener) int {
	if !reflect.TypeOf(l).Comparable() {
		return -1
	}
	for i, existing := range n.listeners {
		if reflect.TypeOf(existing) == reflect.TypeOf(l) && sameListener(existing, l) {
			return i
		}
	}
	return -1
}

// sameListener reports a == b. A comparable type can still hold an
// uncomparable value in an interface field; such listeners never match.
func sameListener(a, b api.EventListener) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// emit delivers event to every listener in registration order. Listener
// panics are logged and never reach the caller.
func (n *notifier) emit(event api.Event) {
	n.mu.RLock()
	listeners := append([]api.EventListener(nil), n.listeners...)
	n.mu.RUnlock()

	for _, l := range listeners {
		deliver(l, event)
	}
}

func deliver(l api.EventListener, event api.Event) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Registry", fmt.Errorf("%v", r), "Event listener failed handling %s for %s", event.Type, event.Name)
		}
	}()
	l.OnRegistryEvent(event)
}
