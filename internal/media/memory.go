package media

import (
	"context"
	"slices"
	"sync"
)

// MemoryAttachmentRepository keeps attachments in process memory.
type MemoryAttachmentRepository struct {
	mu      sync.RWMutex
	records map[int64]*Attachment
}

// NewMemoryAttachmentRepository constructs an empty repository.
func NewMemoryAttachmentRepository() *MemoryAttachmentRepository {
	return &MemoryAttachmentRepository{records: make(map[int64]*Attachment)}
}

func (r *MemoryAttachmentRepository) Create(_ context.Context, attachment *Attachment) (*Attachment, error) {
	if attachment == nil {
		return nil, nil
	}
	cloned := cloneAttachment(attachment)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[cloned.AttachmentID] = cloned
	return cloneAttachment(cloned), nil
}

func (r *MemoryAttachmentRepository) Update(_ context.Context, attachment *Attachment) (*Attachment, error) {
	if attachment == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[attachment.AttachmentID]; !ok {
		return nil, &NotFoundError{Resource: "attachment", Key: attachmentKey(attachment.AttachmentID)}
	}
	cloned := cloneAttachment(attachment)
	r.records[cloned.AttachmentID] = cloned
	return cloneAttachment(cloned), nil
}

func (r *MemoryAttachmentRepository) GetByAttachmentID(_ context.Context, attachmentID int64) (*Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[attachmentID]
	if !ok {
		return nil, &NotFoundError{Resource: "attachment", Key: attachmentKey(attachmentID)}
	}
	return cloneAttachment(record), nil
}

func (r *MemoryAttachmentRepository) ListByParent(_ context.Context, parentID int64) ([]*Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Attachment
	for _, record := range r.records {
		if record.ParentID == parentID {
			out = append(out, cloneAttachment(record))
		}
	}
	slices.SortFunc(out, func(a, b *Attachment) int {
		return int(a.AttachmentID - b.AttachmentID)
	})
	return out, nil
}

func (r *MemoryAttachmentRepository) Delete(_ context.Context, attachmentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[attachmentID]; !ok {
		return &NotFoundError{Resource: "attachment", Key: attachmentKey(attachmentID)}
	}
	delete(r.records, attachmentID)
	return nil
}

var _ AttachmentRepository = (*MemoryAttachmentRepository)(nil)
