package server

import (
	"sort"
	"sync"
)

// itemType represents the type of MCP item
type itemType string

const (
	itemTypeTool   itemType = "tool"
	itemTypePrompt itemType = "prompt"
)

// activeItemManager tracks which items are currently advertised on the MCP
// server.
type activeItemManager struct {
	mu       sync.RWMutex
	items    map[string]bool
	itemType itemType
}

func newActiveItemManager(iType itemType) *activeItemManager {
	return &activeItemManager{
		items:    make(map[string]bool),
		itemType: iType,
	}
}

func (m *activeItemManager) isActive(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[name]
}

func (m *activeItemManager) setActive(name string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if active {
		m.items[name] = true
	} else {
		delete(m.items, name)
	}
}

// getInactiveItems returns items that are no longer in the new set
func (m *activeItemManager) getInactiveItems(newItems map[string]struct{}) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var inactive []string
	for name := range m.items {
		if _, exists := newItems[name]; !exists {
			inactive = append(inactive, name)
		}
	}
	sort.Strings(inactive)
	return inactive
}

func (m *activeItemManager) removeItems(items []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		delete(m.items, item)
	}
}

// names returns the active items in sorted order.
func (m *activeItemManager) names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.items))
	for name := range m.items {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
