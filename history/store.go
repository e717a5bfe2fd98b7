package history

import (
	"encoding/json"
	"fmt"
	"time"

	pebble "github.com/cockroachdb/pebble"

	"assetshrink/models"
)

// Record is one job outcome of one batch run.
type Record struct {
	RunID     string        `json:"run_id"`
	Index     int           `json:"index"`
	Timestamp time.Time     `json:"timestamp"`
	Result    models.Result `json:"result"`
}

// Store is a Pebble-backed log of job results keyed "<runID>/<index>".
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the history store
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// key zero-pads the index so records of a run iterate in job order.
func key(runID string, index int) []byte {
	return []byte(fmt.Sprintf("%s/%06d", runID, index))
}

// Put stores the result of job number index in run runID.
func (s *Store) Put(runID string, index int, result models.Result) error {
	return s.put(Record{
		RunID:     runID,
		Index:     index,
		Timestamp: time.Now(),
		Result:    result,
	})
}

func (s *Store) put(record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal history record: %w", err)
	}
	return s.db.Set(key(record.RunID, record.Index), data, pebble.Sync)
}

// ListRun returns the records of one run in job order.
func (s *Store) ListRun(runID string) ([]Record, error) {
	prefix := []byte(runID + "/")
	upper := append([]byte(runID), '/'+1)
	return s.scan(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
}

// List returns every stored record (for admin/debugging)
func (s *Store) List() ([]Record, error) {
	return s.scan(&pebble.IterOptions{})
}

// LastRun returns the records of the most recently written run, or an
// empty slice when the store holds nothing.
func (s *Store) LastRun() ([]Record, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	var latest *Record
	for i := range all {
		if latest == nil || all[i].Timestamp.After(latest.Timestamp) {
			latest = &all[i]
		}
	}
	if latest == nil {
		return nil, nil
	}
	return s.ListRun(latest.RunID)
}

// Summarize rebuilds a batch summary from the records of one run.
func Summarize(records []Record) models.Summary {
	var summary models.Summary
	for i, r := range records {
		if i == 0 || r.Timestamp.Before(summary.StartedAt) {
			summary.StartedAt = r.Timestamp
		}
		summary.RunID = r.RunID
		summary.Results = append(summary.Results, r.Result)
	}
	return summary
}

func (s *Store) scan(opts *pebble.IterOptions) ([]Record, error) {
	iter, err := s.db.NewIter(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	var records []Record
	for iter.First(); iter.Valid(); iter.Next() {
		var record Record
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			continue // Skip invalid records
		}
		records = append(records, record)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iteration error: %w", err)
	}
	return records, nil
}

// CleanupOldRecords removes records older than maxAge and reports how many
// were deleted.
func (s *Store) CleanupOldRecords(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	deleted := 0
	for iter.First(); iter.Valid(); iter.Next() {
		var record Record
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			continue
		}
		if record.Timestamp.Before(cutoff) {
			if err := batch.Delete(iter.Key(), nil); err != nil {
				iter.Close()
				return 0, fmt.Errorf("failed to queue delete: %w", err)
			}
			deleted++
		}
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}

	if deleted == 0 {
		return 0, nil
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return 0, fmt.Errorf("failed to delete old history records: %w", err)
	}
	return deleted, nil
}
