package posts

import (
	"context"
	"slices"
	"sync"
)

// MemoryPostRepository keeps posts in process memory.
type MemoryPostRepository struct {
	mu      sync.RWMutex
	records map[int64]*Post
}

// NewMemoryPostRepository constructs an empty repository.
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{records: make(map[int64]*Post)}
}

func (r *MemoryPostRepository) Create(_ context.Context, post *Post) (*Post, error) {
	cloned := clonePost(post)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[cloned.PostID] = cloned
	return clonePost(cloned), nil
}

func (r *MemoryPostRepository) Update(_ context.Context, post *Post) (*Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[post.PostID]; !ok {
		return nil, &NotFoundError{Resource: "post", Key: postKey(post.PostID)}
	}
	cloned := clonePost(post)
	r.records[cloned.PostID] = cloned
	return clonePost(cloned), nil
}

func (r *MemoryPostRepository) GetByPostID(_ context.Context, postID int64) (*Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[postID]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: postKey(postID)}
	}
	return clonePost(record), nil
}

func (r *MemoryPostRepository) List(context.Context) ([]*Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Post, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, clonePost(record))
	}
	slices.SortFunc(out, func(a, b *Post) int {
		return int(a.PostID - b.PostID)
	})
	return out, nil
}

var _ PostRepository = (*MemoryPostRepository)(nil)
