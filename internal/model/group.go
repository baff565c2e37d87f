package model

import (
	"time"
)

// Group is a teacher's class. Students join it with Code.
type Group struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Computed fields (not in table)
	MemberCount int `db:"member_count" json:"member_count"`
}

type GroupMember struct {
	GroupID  string    `db:"group_id" json:"group_id"`
	UserID   string    `db:"user_id" json:"user_id"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`

	// Joined from users
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

const (
	ResourceKindLink     = "link"
	ResourceKindFile     = "file"
	ResourceKindTemplate = "template"
	ResourceKindVideo    = "video"
	ResourceKindArticle  = "article"
	ResourceKindOther    = "other"
)

// GroupResource is material a teacher shares with a group, either a link
// or an uploaded file.
type GroupResource struct {
	ID          string    `db:"id" json:"id"`
	GroupID     string    `db:"group_id" json:"group_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Kind        string    `db:"kind" json:"kind"`
	URL         *string   `db:"url" json:"url"`
	FileID      *string   `db:"file_id" json:"file_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	// Computed fields (not in table)
	DownloadURL string `db:"-" json:"download_url,omitempty"`
}
