package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"docsight/internal/domain"
	"docsight/internal/port"
)

// record pairs a stored document with an insertion sequence number so
// List ordering stays deterministic when CreatedAt timestamps collide.
type record struct {
	doc domain.Document
	seq uint64
}

type documentStore struct {
	mu      sync.RWMutex
	docs    map[uuid.UUID]*record
	nextSeq uint64
}

// NewDocumentStore creates an in-memory DocumentStore. Documents live
// for the lifetime of the process; the Parsed result is shared by
// reference and treated as immutable once attached.
func NewDocumentStore() port.DocumentStore {
	return &documentStore{
		docs: make(map[uuid.UUID]*record),
	}
}

func (s *documentStore) Create(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	s.nextSeq++
	s.docs[doc.ID] = &record{doc: *doc, seq: s.nextSeq}
	return nil
}

func (s *documentStore) GetByID(_ context.Context, docID uuid.UUID) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.docs[docID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	doc := rec.doc
	return &doc, nil
}

func (s *documentStore) List(_ context.Context, offset, limit int) ([]domain.Document, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*record, 0, len(s.docs))
	for _, rec := range s.docs {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].doc.CreatedAt.Equal(recs[j].doc.CreatedAt) {
			return recs[i].doc.CreatedAt.After(recs[j].doc.CreatedAt)
		}
		return recs[i].seq > recs[j].seq
	})

	total := len(recs)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	docs := make([]domain.Document, 0, end-offset)
	for _, rec := range recs[offset:end] {
		docs = append(docs, rec.doc)
	}
	return docs, total, nil
}

func (s *documentStore) UpdateStatus(_ context.Context, docID uuid.UUID, status domain.ParseStatus, parseError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.docs[docID]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	rec.doc.Status = status
	rec.doc.Error = parseError
	return nil
}

func (s *documentStore) AttachResult(_ context.Context, docID uuid.UUID, sourcePath string, parsed *domain.NormalizedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.docs[docID]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	now := time.Now().UTC()
	rec.doc.SourcePath = sourcePath
	rec.doc.Parsed = parsed
	rec.doc.Status = domain.ParseStatusParsed
	rec.doc.Error = ""
	rec.doc.ParsedAt = &now
	return nil
}

func (s *documentStore) Delete(_ context.Context, docID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[docID]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(s.docs, docID)
	return nil
}
