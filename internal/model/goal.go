package model

import (
	"time"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// Column names used in partial goal writes.
const (
	FieldProjectID       = "project_id"
	FieldGroupID         = "group_id"
	FieldTitle           = "title"
	FieldSpecific        = "specific"
	FieldMeasurable      = "measurable"
	FieldAchievable      = "achievable"
	FieldRelevant        = "relevant"
	FieldTimeBoundStart  = "time_bound_start"
	FieldTimeBoundEnd    = "time_bound_end"
	FieldStartDate       = "start_date"
	FieldProgress        = "progress"
	FieldApprovalStatus  = "approval_status"
	FieldTeacherFeedback = "teacher_feedback"
	FieldTeacherID       = "teacher_id"
	FieldAchieved        = "achieved"
	FieldAchievedAt      = "achieved_at"
	FieldStartedEarly    = "started_early"
	FieldPostponed       = "postponed"
	FieldUpdatedAt       = "updated_at"
)

// Fields is a partial set of goal columns to write.
type Fields map[string]any

// Goal is a SMART goal owned by a student. StartedEarly and Postponed are
// absent from older schemas and scan as false there.
type Goal struct {
	ID              string         `db:"id" json:"id"`
	UserID          string         `db:"user_id" json:"user_id"`
	ProjectID       *string        `db:"project_id" json:"project_id"`
	GroupID         *string        `db:"group_id" json:"group_id"`
	Title           string         `db:"title" json:"title"`
	Specific        string         `db:"specific" json:"specific"`
	Measurable      string         `db:"measurable" json:"measurable"`
	Achievable      string         `db:"achievable" json:"achievable"`
	Relevant        string         `db:"relevant" json:"relevant"`
	TimeBoundStart  time.Time      `db:"time_bound_start" json:"time_bound_start"`
	TimeBoundEnd    time.Time      `db:"time_bound_end" json:"time_bound_end"`
	StartDate       time.Time      `db:"start_date" json:"start_date"`
	Progress        int            `db:"progress" json:"progress"`
	ApprovalStatus  ApprovalStatus `db:"approval_status" json:"approval_status"`
	TeacherFeedback *string        `db:"teacher_feedback" json:"teacher_feedback"`
	TeacherID       *string        `db:"teacher_id" json:"teacher_id"`
	Achieved        bool           `db:"achieved" json:"achieved"`
	AchievedAt      *time.Time     `db:"achieved_at" json:"achieved_at"`
	StartedEarly    bool           `db:"started_early" json:"started_early"`
	Postponed       bool           `db:"postponed" json:"postponed"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Clone returns a shallow copy. Pointer fields are shared and must be
// replaced rather than mutated.
func (g *Goal) Clone() *Goal {
	c := *g
	return &c
}

func (g *Goal) OwnedBy(userID string) bool {
	return g.UserID == userID
}
