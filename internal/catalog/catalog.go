// Package catalog loads the fixed sequence of training messages a session
// iterates over. A catalog that fails to load is the one session-fatal
// error: callers must surface it visibly instead of retrying.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/smishing-defense/backend/internal/models"
)

// Catalog is an immutable, ordered set of message items with a keyed
// lookup by id.
type Catalog struct {
	items []models.MessageItem
	byID  map[int]int // message id to catalog index
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse validates the raw catalog JSON. Schema violations fail the whole
// load rather than dropping individual items.
func Parse(data []byte) (*Catalog, error) {
	var items []models.MessageItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	var errs []string
	byID := make(map[int]int, len(items))
	for i, item := range items {
		if item.ID <= 0 {
			errs = append(errs, fmt.Sprintf("item %d: missing or invalid id", i+1))
			continue
		}
		if _, dup := byID[item.ID]; dup {
			errs = append(errs, fmt.Sprintf("item %d: duplicate id %d", i+1, item.ID))
			continue
		}
		if item.Sender == "" {
			errs = append(errs, fmt.Sprintf("item %d: missing sender", i+1))
		}
		if item.Content == "" {
			errs = append(errs, fmt.Sprintf("item %d: missing content", i+1))
		}
		if !item.CorrectAction.Completes() {
			errs = append(errs, fmt.Sprintf("item %d: correctAction must be %q or %q, got %q",
				i+1, models.ActionAccept, models.ActionBlock, item.CorrectAction))
		}
		byID[item.ID] = i
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %s", strings.Join(errs, "; "))
	}

	return &Catalog{items: items, byID: byID}, nil
}

func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns the catalog in presentation order.
func (c *Catalog) Items() []models.MessageItem {
	return c.items
}

// At returns the item at the given catalog index.
func (c *Catalog) At(i int) models.MessageItem {
	return c.items[i]
}

// ByID looks up an item by message id. A miss is a normal outcome.
func (c *Catalog) ByID(id int) (models.MessageItem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.MessageItem{}, false
	}
	return c.items[i], true
}

// IndexOf returns the catalog index for a message id, or -1 when the id
// is not in the catalog.
func (c *Catalog) IndexOf(id int) int {
	i, ok := c.byID[id]
	if !ok {
		return -1
	}
	return i
}
