package forum

import (
	"fmt"
	"strings"
	"time"
)

// Board is a discussion board. Boards are read-only from the client's side:
// fetched once per session and never mutated.
type Board struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Identity is the authenticated user as reported by GET /users/me, plus the
// denormalized snapshot embedded in posts and comments.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	BgLeft   string `json:"bg_left,omitempty"`
	BgMiddle string `json:"bg_middle,omitempty"`
	BgRight  string `json:"bg_right,omitempty"`
}

// DisplayName resolves the name shown everywhere an identity is rendered:
// nickname when present and non-empty, username otherwise.
func (u *Identity) DisplayName() string {
	if u == nil {
		return ""
	}
	if strings.TrimSpace(u.Nickname) != "" {
		return u.Nickname
	}
	return u.Username
}

// Post is a forum post. Created by the authenticated user, deleted only by
// its owner, never edited in place.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   int64     `json:"owner_id"`
	BoardID   int64     `json:"board_id"`
	CreatedAt Timestamp `json:"created_at"`
	IsSpoiler bool      `json:"is_spoiler"`
	Owner     *Identity `json:"owner,omitempty"`
}

// Comment is append-only: created, never edited or deleted through this client.
type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	UserID    int64     `json:"user_id"`
	PostID    int64     `json:"post_id"`
	CreatedAt Timestamp `json:"created_at"`
	IsSpoiler bool      `json:"is_spoiler"`
	User      *Identity `json:"user,omitempty"`
}

// PostCreate is the body of POST /posts/.
type PostCreate struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	BoardID   int64  `json:"board_id"`
	IsSpoiler bool   `json:"is_spoiler"`
}

// ProfileUpdate is the body of PATCH /users/me.
type ProfileUpdate struct {
	Nickname string `json:"nickname"`
	BgLeft   string `json:"bg_left"`
	BgMiddle string `json:"bg_middle"`
	BgRight  string `json:"bg_right"`
}

// PostQuery selects which post list to fetch. BoardID and UserID are
// mutually exclusive; UserID wins if both are set (the history view ignores
// the board filter).
type PostQuery struct {
	BoardID *int64
	UserID  *int64
}

// Timestamp wraps time.Time to accept the upstream API's timestamp format.
// The backend emits naive ISO 8601 without a zone offset, which
// time.Time's own UnmarshalJSON rejects.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}
