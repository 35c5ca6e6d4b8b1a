package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/taskmaster/board/internal/domain/entities"
	"github.com/taskmaster/board/internal/infrastructure/logger"
	"github.com/taskmaster/board/internal/ports"
)

// RecordStore implements collection CRUD over a whole-document backend.
//
// Every call loads the full document, applies its change and saves the full
// document back. A single mutex serializes those cycles, so writers inside one
// process never lose each other's updates. Separate processes sharing a
// backend still race, last writer wins.
type RecordStore struct {
	backend ports.DocumentBackend
	logger  *logger.Logger
	now     func() time.Time

	mu sync.Mutex
}

// NewRecordStore creates a new record store
func NewRecordStore(backend ports.DocumentBackend, logger *logger.Logger) *RecordStore {
	return &RecordStore{
		backend: backend,
		logger:  logger.WithComponent("record_store"),
		now:     time.Now,
	}
}

// List returns every record of collection, or an empty slice if the
// collection does not exist.
func (s *RecordStore) List(ctx context.Context, collection string) (records []entities.Record, err error) {
	defer s.observe("list", collection, "", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	records = doc[collection]
	if records == nil {
		records = []entities.Record{}
	}
	return records, nil
}

// GetByID returns the first record of collection whose id matches.
func (s *RecordStore) GetByID(ctx context.Context, collection, id string) (record entities.Record, err error) {
	defer s.observe("get", collection, id, time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := doc.IndexOf(collection, id)
	if idx < 0 {
		return nil, notFound(collection, id)
	}
	return doc[collection][idx], nil
}

// Create appends record to collection as given. Ids are neither generated
// nor checked for uniqueness.
func (s *RecordStore) Create(ctx context.Context, collection string, record entities.Record) (created entities.Record, err error) {
	defer s.observe("create", collection, record.ID(), time.Now(), &err)

	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, entities.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, extra, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	doc[collection] = append(doc[collection], record)

	if err := s.save(ctx, doc, extra); err != nil {
		return nil, err
	}
	return record, nil
}

// Patch shallow-merges fields onto the record with id.
func (s *RecordStore) Patch(ctx context.Context, collection, id string, fields entities.Record) (updated entities.Record, err error) {
	defer s.observe("patch", collection, id, time.Now(), &err)

	if fields == nil {
		return nil, entities.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, extra, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := doc.IndexOf(collection, id)
	if idx < 0 {
		return nil, notFound(collection, id)
	}

	updated = doc[collection][idx].Merge(fields)
	doc[collection][idx] = updated

	if err := s.save(ctx, doc, extra); err != nil {
		return nil, err
	}
	return updated, nil
}

// Replace substitutes the whole record with id by record.
func (s *RecordStore) Replace(ctx context.Context, collection, id string, record entities.Record) (replaced entities.Record, err error) {
	defer s.observe("replace", collection, id, time.Now(), &err)

	if record == nil {
		return nil, entities.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, extra, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := doc.IndexOf(collection, id)
	if idx < 0 {
		return nil, notFound(collection, id)
	}

	doc[collection][idx] = record

	if err := s.save(ctx, doc, extra); err != nil {
		return nil, err
	}
	return record, nil
}

// Remove deletes every record with id and reports whether any existed.
// The document is left untouched when nothing matches.
func (s *RecordStore) Remove(ctx context.Context, collection, id string) (existed bool, err error) {
	defer s.observe("remove", collection, id, time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, extra, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	records := doc[collection]
	kept := make([]entities.Record, 0, len(records))
	for _, rec := range records {
		if rec.ID() == id {
			existed = true
			continue
		}
		kept = append(kept, rec)
	}
	if !existed {
		return false, nil
	}

	doc[collection] = kept
	if err := s.save(ctx, doc, extra); err != nil {
		return false, err
	}
	return true, nil
}

// Collections returns the names of every collection in the document, sorted.
func (s *RecordStore) Collections(ctx context.Context) ([]string, error) {
	doc, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Names(), nil
}

// Snapshot returns the whole current document.
func (s *RecordStore) Snapshot(ctx context.Context) (entities.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.load(ctx)
	return doc, err
}

// Reset overwrites the stored document with doc.
func (s *RecordStore) Reset(ctx context.Context, doc entities.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc == nil {
		doc = entities.NewDocument()
	}
	return s.save(ctx, doc, nil)
}

// Summary aggregates record counts and status histograms.
func (s *RecordStore) Summary(ctx context.Context) (*ports.BoardSummary, error) {
	doc, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	summary := &ports.BoardSummary{
		Counts:          make(map[string]int, len(doc)),
		ProjectsByState: make(map[string]int),
		TasksByState:    make(map[string]int),
	}

	for name, records := range doc {
		summary.Counts[name] = len(records)
	}

	var progressSum float64
	var progressN int
	for _, project := range doc[entities.CollectionProjects] {
		summary.ProjectsByState[statusOf(project)]++
		if p, ok := number(project["progress"]); ok {
			progressSum += p
			progressN++
		}
	}
	if progressN > 0 {
		summary.AverageProgress = progressSum / float64(progressN)
	}

	now := s.now()
	for _, task := range doc[entities.CollectionTasks] {
		status := statusOf(task)
		summary.TasksByState[status]++
		if !entities.TaskStatus(status).IsTerminal() {
			summary.OpenTasks++
		}

		due, ok := timeField(task, "dueDate")
		if !ok || entities.TaskStatus(status) == entities.TaskStatusCompleted {
			continue
		}
		switch {
		case due.Before(now):
			summary.OverdueTasks++
		case !due.After(now.Add(upcomingWindow)):
			summary.UpcomingTasks++
		}
	}

	for _, rec := range doc[entities.CollectionSessions] {
		if sessionLive(rec, now) {
			summary.LiveSessions++
		}
	}

	return summary, nil
}

// Export returns the stored document as written, keys that are not
// collections included.
func (s *RecordStore) Export(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, extra, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return entities.EncodeDocument(doc, extra)
}

func (s *RecordStore) load(ctx context.Context) (entities.Document, entities.Extra, error) {
	payload, err := s.backend.Load(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrBackendUnavailable) || ctx.Err() != nil {
			return nil, nil, err
		}
		s.logger.Warnw("Document unreadable, using empty document", "error", err)
		return entities.NewDocument(), nil, nil
	}
	if payload == nil {
		return entities.NewDocument(), nil, nil
	}

	doc, extra, err := entities.ParseDocument(payload)
	if err != nil {
		s.logger.Warnw("Document malformed, using empty document", "error", err)
		return entities.NewDocument(), nil, nil
	}
	return doc, extra, nil
}

func (s *RecordStore) save(ctx context.Context, doc entities.Document, extra entities.Extra) error {
	payload, err := entities.EncodeDocument(doc, extra)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, payload); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (s *RecordStore) observe(op, collection, id string, start time.Time, errp *error) {
	err := *errp
	if errors.Is(err, entities.ErrRecordNotFound) {
		err = nil
	}
	s.logger.LogStoreOperation(op, collection, id, msSince(start), err)
}

func notFound(collection, id string) error {
	return fmt.Errorf("%w: %s/%s", entities.ErrRecordNotFound, collection, id)
}

func checkCollection(collection string) error {
	if collection == "" {
		return fmt.Errorf("collection name is required")
	}
	return nil
}

func statusOf(rec entities.Record) string {
	if status := entities.IDString(rec["status"]); status != "" {
		return status
	}
	return "unknown"
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// upcomingWindow is how far ahead a due date counts as upcoming
const upcomingWindow = 7 * 24 * time.Hour

// sessionLive reads only isActive and expiresAt so sessions with numeric
// ids still count.
func sessionLive(rec entities.Record, now time.Time) bool {
	active, _ := rec["isActive"].(bool)
	expires, ok := timeField(rec, "expiresAt")
	if !ok {
		return false
	}
	session := entities.Session{IsActive: active, ExpiresAt: expires}
	return session.IsLive(now)
}

// timeField parses an RFC 3339 timestamp or a plain YYYY-MM-DD date, the
// latter taken as UTC midnight.
func timeField(rec entities.Record, field string) (time.Time, bool) {
	s, ok := rec[field].(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1e6
}
