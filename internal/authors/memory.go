package authors

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// MemoryAuthorRepository keeps authors in process memory.
type MemoryAuthorRepository struct {
	mu      sync.RWMutex
	records map[int64]*Author
}

// NewMemoryAuthorRepository constructs an empty repository.
func NewMemoryAuthorRepository() *MemoryAuthorRepository {
	return &MemoryAuthorRepository{records: make(map[int64]*Author)}
}

func (r *MemoryAuthorRepository) Create(_ context.Context, author *Author) (*Author, error) {
	cloned := cloneAuthor(author)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[cloned.AuthorID] = cloned
	return cloneAuthor(cloned), nil
}

func (r *MemoryAuthorRepository) Update(_ context.Context, author *Author) (*Author, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[author.AuthorID]; !ok {
		return nil, &NotFoundError{Resource: "author", Key: authorKey(author.AuthorID)}
	}
	cloned := cloneAuthor(author)
	r.records[cloned.AuthorID] = cloned
	return cloneAuthor(cloned), nil
}

func (r *MemoryAuthorRepository) GetByAuthorID(_ context.Context, authorID int64) (*Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[authorID]
	if !ok {
		return nil, &NotFoundError{Resource: "author", Key: authorKey(authorID)}
	}
	return cloneAuthor(record), nil
}

func (r *MemoryAuthorRepository) List(context.Context) ([]*Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Author, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, cloneAuthor(record))
	}
	slices.SortFunc(out, func(a, b *Author) int {
		return strings.Compare(a.DisplayName, b.DisplayName)
	})
	return out, nil
}

var _ AuthorRepository = (*MemoryAuthorRepository)(nil)
