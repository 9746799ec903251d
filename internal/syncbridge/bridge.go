// Package syncbridge ships local attempts to the server-side stats ledger.
// Delivery is fire-and-forget: the training flow never waits on the
// network and never sees a delivery failure.
package syncbridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/smishing-defense/backend/internal/models"
)

const saveProgressPath = "/api/save-progress"

// Bridge posts attempts to the remote ledger in the background.
type Bridge struct {
	baseURL string
	client  *http.Client
	wg      sync.WaitGroup

	// notify, when set, receives the outcome of each delivery. Only tests
	// use it.
	notify func(err error)
}

func New(baseURL string) *Bridge {
	return &Bridge{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Forward sends one attempt to the ledger in the background. It returns
// immediately; a failed delivery is logged and discarded, never surfaced
// to the caller.
func (b *Bridge) Forward(req models.SaveProgressRequest) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		err := b.post(req)
		if err != nil {
			log.Printf("[sync] delivery failed, continuing: %v", err)
		}
		if b.notify != nil {
			b.notify(err)
		}
	}()
}

// Wait blocks until all in-flight deliveries have finished. The trainer
// calls it on exit so the process does not drop attempts still posting.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

func (b *Bridge) post(req models.SaveProgressRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}

	resp, err := b.client.Post(b.baseURL+saveProgressPath, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post attempt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post attempt: server returned %d", resp.StatusCode)
	}
	return nil
}
