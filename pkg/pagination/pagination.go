// Package pagination implements keyset paging over (created_at DESC, id DESC).
package pagination

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	sep = "|"
)

// Params is a page request as received from the client.
type Params struct {
	Limit  int
	Cursor string
}

// PageSize is the clamped number of rows returned to the client.
func (p Params) PageSize() int {
	return Clamp(p.Limit)
}

// FetchSize asks the store for one extra row so the next page can be detected
// without a count query.
func (p Params) FetchSize() int {
	return p.PageSize() + 1
}

// After decodes the cursor. The first page has no cursor and yields nil.
func (p Params) After() (*Cursor, error) {
	return Decode(p.Cursor)
}

// Cursor is the position of the last row on a page.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Encode renders an opaque token that survives a query string unescaped.
func (c Cursor) Encode() string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + sep + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Decode parses a token produced by Cursor.Encode.
func Decode(token string) (*Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, invalid(err)
	}
	stamp, id, ok := strings.Cut(string(raw), sep)
	if !ok {
		return nil, invalid(nil)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, invalid(err)
	}
	rowID, err := uuid.Parse(id)
	if err != nil {
		return nil, invalid(err)
	}
	return &Cursor{CreatedAt: createdAt, ID: rowID}, nil
}

func invalid(cause error) error {
	details := map[string]string{"cursor": "is not a valid page cursor"}
	if cause == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, cause, "invalid cursor").WithDetails(details)
}

// Clamp applies the default and maximum page sizes.
func Clamp(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// Trim cuts rows fetched with FetchSize down to one page and returns the
// token for the next page, or "" when rows was the last page.
func Trim[T any](rows []T, p Params, position func(T) Cursor) ([]T, string) {
	size := p.PageSize()
	if len(rows) <= size {
		return rows, ""
	}
	rows = rows[:size]
	return rows, position(rows[size-1]).Encode()
}
