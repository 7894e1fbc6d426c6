package catalog

import (
	"log/slog"
	"sync"

	"github.com/satcom-sim/encap/pkg/encapfault"
)

// Catalog holds every known Terminal and Category. It is built once at
// startup from the static configuration (see eds.go) and is read far
// more often than it is written, so it guards its maps with an
// RWMutex rather than the teacher's channel-actor pattern — terminals
// and categories don't need the serialized-command-queue semantics a
// CANopen node object does, only safe concurrent reads.
type Catalog struct {
	mu               sync.RWMutex
	terminals        map[uint8]*Terminal
	staticAssignment map[uint8]string
	defaultCategory  string
	categories       map[string]*Category
	log              *slog.Logger
}

// New builds a Catalog over a fixed set of categories and a static
// tal_id-to-category assignment table, with defaultCategory used when a
// terminal has no static entry.
func New(categories map[string]*Category, staticAssignment map[uint8]string, defaultCategory string) *Catalog {
	return &Catalog{
		terminals:        make(map[uint8]*Terminal),
		staticAssignment: staticAssignment,
		defaultCategory:  defaultCategory,
		categories:       categories,
		log:              slog.Default().With("component", "catalog"),
	}
}

// AddTerminal registers tal_id. Re-adding an already-known terminal is
// not an error: it models the terminal having rebooted and simply
// resets its category assignment so AssignCategory re-derives it
// (§4.2).
func (c *Catalog) AddTerminal(talID uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, exists := c.terminals[talID]; exists {
		t.Category = ""
		c.log.Info("terminal re-added, treating as reboot", "tal_id", talID)
		return nil
	}
	c.terminals[talID] = &Terminal{TalID: talID}
	return nil
}

// AssignCategory resolves tal_id's category: a static mapping entry if
// one exists, otherwise the configured default. Fails with
// ErrNoCategoryAssigned if neither is set (§4.2). The returned Category
// may be a non-SA category; the caller is responsible for not
// registering such a terminal in any SA-specific table.
func (c *Catalog) AssignCategory(talID uint8) (*Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name, ok := c.staticAssignment[talID]
	if !ok {
		name = c.defaultCategory
	}
	if name == "" {
		return nil, encapfault.ErrNoCategoryAssigned
	}
	cat, ok := c.categories[name]
	if !ok {
		return nil, encapfault.ErrNoCategoryAssigned
	}

	t, exists := c.terminals[talID]
	if !exists {
		t = &Terminal{TalID: talID}
		c.terminals[talID] = t
	}
	t.Category = name
	return cat, nil
}

// Terminal returns the known terminal record for talID, if any.
func (c *Catalog) Terminal(talID uint8) (*Terminal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.terminals[talID]
	return t, ok
}

// Category returns the named category, if configured.
func (c *Catalog) Category(name string) (*Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cat, ok := c.categories[name]
	return cat, ok
}

// CategoryNames returns every configured category's name, for callers
// that need to enumerate categories rather than look one up by name
// (e.g. picking a collision-resolution algorithm per Slotted ALOHA
// category at startup).
func (c *Catalog) CategoryNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.categories))
	for name := range c.categories {
		names = append(names, name)
	}
	return names
}

// ComputeSlots runs Category.ComputeSlots over every configured
// category using converter.
func (c *Catalog) ComputeSlots(converter Converter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cat := range c.categories {
		cat.ComputeSlots(converter)
	}
}
