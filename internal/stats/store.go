package stats

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/smishing-defense/backend/internal/models"
)

// DocumentStore persists the stats ledger as one versioned document.
// Every write is a full read-modify-write of the whole document.
type DocumentStore interface {
	// Load returns the current document and its version. A store with no
	// document yet returns an empty document at version 0.
	Load() (*models.StatsDocument, int64, error)
	// Save writes the document, succeeding only when the stored version
	// still matches expectedVersion. A lost race returns
	// ErrVersionConflict.
	Save(doc *models.StatsDocument, expectedVersion int64) error
}

// PostgresStore keeps the document in a single versioned row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load() (*models.StatsDocument, int64, error) {
	var raw []byte
	var version int64

	err := s.db.QueryRow(`SELECT doc, version FROM stats_document WHERE id = 1`).Scan(&raw, &version)
	if err == sql.ErrNoRows {
		return models.NewStatsDocument(), 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("query stats document: %w", err)
	}

	var doc models.StatsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, 0, fmt.Errorf("decode stats document: %w", err)
	}
	return &doc, version, nil
}

func (s *PostgresStore) Save(doc *models.StatsDocument, expectedVersion int64) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode stats document: %w", err)
	}

	var res sql.Result
	if expectedVersion == 0 {
		res, err = s.db.Exec(
			`INSERT INTO stats_document (id, doc, version) VALUES (1, $1, 1)
			 ON CONFLICT (id) DO NOTHING`,
			raw,
		)
	} else {
		res, err = s.db.Exec(
			`UPDATE stats_document SET doc = $1, version = version + 1, updated_at = NOW()
			 WHERE id = 1 AND version = $2`,
			raw, expectedVersion,
		)
	}
	if err != nil {
		return fmt.Errorf("write stats document: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write stats document: %w", err)
	}
	if n == 0 {
		return ErrVersionConflict
	}
	return nil
}
