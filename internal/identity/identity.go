// Package identity manages the per-device anonymous identity. The user id
// is a self-assigned opaque token, not a credential. There is no
// verification anywhere.
package identity

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const identityFile = "identity.json"

// Identity is the stable anonymous identity for one device.
type Identity struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// Provider persists one Identity per data directory.
type Provider struct {
	path string
}

func NewProvider(dataDir string) *Provider {
	return &Provider{path: filepath.Join(dataDir, identityFile)}
}

// GetOrCreate returns the persisted identity, generating and persisting a
// fresh one when none exists. A corrupt file is treated as absent and
// replaced. Persistence is best effort: a failed write is logged and the
// in-memory identity is returned anyway.
func (p *Provider) GetOrCreate() Identity {
	data, err := os.ReadFile(p.path)
	if err == nil {
		var id Identity
		if json.Unmarshal(data, &id) == nil && id.UserID != "" {
			return id
		}
		log.Printf("[identity] corrupt identity file, regenerating")
	}

	id := Identity{UserID: newUserID()}
	id.UserName = defaultUserName(id.UserID)
	p.save(id)
	return id
}

// SetName overrides the display name and persists the change.
func (p *Provider) SetName(name string) Identity {
	id := p.GetOrCreate()
	name = strings.TrimSpace(name)
	if name != "" {
		id.UserName = name
		p.save(id)
	}
	return id
}

// Clear removes the persisted identity so the next GetOrCreate generates
// a new one.
func (p *Provider) Clear() error {
	err := os.Remove(p.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

func (p *Provider) save(id Identity) {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		log.Printf("[identity] failed to create data dir: %v", err)
		return
	}
	data, _ := json.MarshalIndent(id, "", "  ")
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		log.Printf("[identity] failed to persist identity: %v", err)
	}
}

// newUserID builds a time-based id with a random suffix, unique with
// overwhelming probability.
func newUserID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("user_%d_%s", time.Now().UnixMilli(), suffix)
}

// defaultUserName derives a display name from the tail of the user id.
func defaultUserName(userID string) string {
	tail := userID
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return "User_" + tail
}
