// Package identity derives stable record ids from the host's numeric ids, so
// re-importing an attachment, post or author keeps its primary key.
package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Kind namespaces host ids; attachment 7 and post 7 get different records.
type Kind string

const (
	KindAttachment Kind = "attachment"
	KindPost       Kind = "post"
	KindAuthor     Kind = "author"
)

const keyRoot = "media-credit"

// Key is the hashed form of a host id: "media-credit:<kind>:<id>".
func Key(kind Kind, hostID int64) string {
	return keyRoot + ":" + string(kind) + ":" + strconv.FormatInt(hostID, 10)
}

// UUID hashes key with go-hashid (SHA-256, normalised). Blank keys map to
// uuid.Nil. If hashing fails the id falls back to a name-based SHA-1 UUID.
func UUID(key string) uuid.UUID {
	key = strings.TrimSpace(key)
	if key == "" {
		return uuid.Nil
	}
	id, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err == nil && id != uuid.Nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
}

// For returns the record id of a host id of the given kind.
func For(kind Kind, hostID int64) uuid.UUID {
	return UUID(Key(kind, hostID))
}

func AttachmentUUID(attachmentID int64) uuid.UUID { return For(KindAttachment, attachmentID) }
func PostUUID(postID int64) uuid.UUID             { return For(KindPost, postID) }
func AuthorUUID(authorID int64) uuid.UUID         { return For(KindAuthor, authorID) }
