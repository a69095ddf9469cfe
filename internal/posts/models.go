package posts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Post is host content that may embed credited images.
type Post struct {
	bun.BaseModel `bun:"table:media_credit_posts,alias:mcp"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PostID    int64     `bun:"post_id,notnull,unique" json:"post_id"`
	Title     string    `bun:"title" json:"title,omitempty"`
	Content   string    `bun:"content,notnull" json:"content"`
	Revision  int       `bun:"revision,notnull,default:0" json:"revision"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

func clonePost(src *Post) *Post {
	if src == nil {
		return nil
	}
	cloned := *src
	return &cloned
}
