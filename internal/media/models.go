package media

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// Attachment is a media item known to the host, keyed by its host id.
type Attachment struct {
	bun.BaseModel `bun:"table:media_credit_attachments,alias:mca"`

	ID           uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	AttachmentID int64      `bun:"attachment_id,notnull,unique" json:"attachment_id"`
	ParentID     int64      `bun:"parent_id,notnull,default:0" json:"parent_id"`
	URL          string     `bun:"url,notnull" json:"url"`
	Title        string     `bun:"title" json:"title,omitempty"`
	Credit       CreditMeta `bun:"credit,type:jsonb" json:"credit"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// CreditMeta is the credit stored on an attachment.
type CreditMeta struct {
	AuthorID int64  `json:"author_id,omitempty"`
	Freeform string `json:"freeform,omitempty"`
	URL      string `json:"url,omitempty"`
	Nofollow bool   `json:"nofollow,omitempty"`
}

// Update converts the stored meta into the transformer's update record.
func (m CreditMeta) Update() interfaces.CreditUpdate {
	return interfaces.CreditUpdate{
		AuthorID: m.AuthorID,
		Freeform: m.Freeform,
		URL:      m.URL,
		Nofollow: m.Nofollow,
	}
}

// IsZero reports whether no credit has been recorded.
func (m CreditMeta) IsZero() bool {
	return m == CreditMeta{}
}

func cloneAttachment(src *Attachment) *Attachment {
	if src == nil {
		return nil
	}
	cloned := *src
	return &cloned
}
