package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultAuthor is used when the acting identity has no display name.
const DefaultAuthor = "User"

type Comment struct {
	ID      string    `json:"id"`
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
	Author  string    `json:"author"`
}

// NewComment trims content and stamps id, date and author.
func NewComment(content, author string, now time.Time) (Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Comment{}, ErrEmptyComment
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = DefaultAuthor
	}
	return Comment{
		ID:      newCommentID(),
		Date:    now,
		Content: content,
		Author:  author,
	}, nil
}

// UUIDv7 ids are time-ordered, so two comments created in the same
// millisecond still get distinct, increasing ids.
func newCommentID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "comment-" + uuid.NewString()
	}
	return "comment-" + id.String()
}

// appendComment returns a new thread; the input slice is never written to.
func appendComment(thread []Comment, c Comment) []Comment {
	out := make([]Comment, len(thread), len(thread)+1)
	copy(out, thread)
	for hasCommentID(out, c.ID) {
		c.ID = newCommentID()
	}
	return append(out, c)
}

func hasCommentID(thread []Comment, id string) bool {
	for _, c := range thread {
		if c.ID == id {
			return true
		}
	}
	return false
}
