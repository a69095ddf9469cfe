package authors

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// Author is a registered user that images can be credited to.
type Author struct {
	bun.BaseModel `bun:"table:media_credit_authors,alias:mcau"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	AuthorID    int64     `bun:"author_id,notnull,unique" json:"author_id"`
	Login       string    `bun:"login" json:"login,omitempty"`
	DisplayName string    `bun:"display_name,notnull" json:"display_name"`
	URL         string    `bun:"url" json:"url,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Profile returns the display subset used in credit lines.
func (a *Author) Profile() interfaces.AuthorProfile {
	return interfaces.AuthorProfile{
		ID:          a.AuthorID,
		DisplayName: a.DisplayName,
		URL:         a.URL,
	}
}

func cloneAuthor(src *Author) *Author {
	if src == nil {
		return nil
	}
	cloned := *src
	return &cloned
}
