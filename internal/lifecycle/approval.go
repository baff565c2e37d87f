package lifecycle

import (
	"slices"
	"time"

	"github.com/stemcapstone/smartgoals/internal/model"
)

// ApprovalMachine holds the allowed approval status transitions.
type ApprovalMachine struct {
	transitions map[model.ApprovalStatus]map[model.ApprovalStatus]bool
}

func NewApprovalMachine() *ApprovalMachine {
	m := &ApprovalMachine{
		transitions: make(map[model.ApprovalStatus]map[model.ApprovalStatus]bool),
	}
	m.add(model.ApprovalPending, model.ApprovalApproved)
	m.add(model.ApprovalPending, model.ApprovalRejected)
	m.add(model.ApprovalRejected, model.ApprovalApproved)
	m.add(model.ApprovalApproved, model.ApprovalRejected)
	// resubmission after the owner edits a rejected goal
	m.add(model.ApprovalRejected, model.ApprovalPending)
	return m
}

func (m *ApprovalMachine) add(from, to model.ApprovalStatus) {
	if m.transitions[from] == nil {
		m.transitions[from] = make(map[model.ApprovalStatus]bool)
	}
	m.transitions[from][to] = true
}

func (m *ApprovalMachine) IsValidTransition(from, to model.ApprovalStatus) bool {
	return m.transitions[from][to]
}

// AllowedTransitions lists the statuses reachable from one status.
func (m *ApprovalMachine) AllowedTransitions(from model.ApprovalStatus) []model.ApprovalStatus {
	var out []model.ApprovalStatus
	for to := range m.transitions[from] {
		out = append(out, to)
	}
	slices.Sort(out)
	return out
}

var approvals = NewApprovalMachine()

type NoticeKind string

const (
	NoticeApproved NoticeKind = "approved"
	NoticeRejected NoticeKind = "rejected"
	NoticeAchieved NoticeKind = "achieved"
)

// Notice is a notification owed to a goal's owner after a transition.
type Notice struct {
	Kind      NoticeKind
	GoalID    string
	GoalTitle string
	OwnerID   string
	Feedback  string
}

// Outcome is the result of a transition: the goal as it should now look, the
// columns to write and the notices to emit once the write succeeds.
type Outcome struct {
	Goal    *model.Goal
	Fields  model.Fields
	Notices []Notice
}

func Approve(g *model.Goal, teacherID, feedback string, now time.Time) (Outcome, error) {
	return review(g, model.ApprovalApproved, teacherID, feedback, now)
}

func Reject(g *model.Goal, teacherID, feedback string, now time.Time) (Outcome, error) {
	return review(g, model.ApprovalRejected, teacherID, feedback, now)
}

func review(g *model.Goal, to model.ApprovalStatus, teacherID, feedback string, now time.Time) (Outcome, error) {
	if !approvals.IsValidTransition(g.ApprovalStatus, to) {
		return Outcome{}, &TransitionError{GoalID: g.ID, From: g.ApprovalStatus, To: to}
	}

	next := g.Clone()
	next.ApprovalStatus = to
	next.TeacherID = &teacherID
	next.TeacherFeedback = nil
	if feedback != "" {
		next.TeacherFeedback = &feedback
	}
	next.UpdatedAt = now

	kind := NoticeApproved
	if to == model.ApprovalRejected {
		kind = NoticeRejected
	}

	return Outcome{
		Goal: next,
		Fields: model.Fields{
			model.FieldApprovalStatus:  string(to),
			model.FieldTeacherID:       teacherID,
			model.FieldTeacherFeedback: nullable(feedback),
			model.FieldUpdatedAt:       now,
		},
		Notices: []Notice{{
			Kind:      kind,
			GoalID:    g.ID,
			GoalTitle: g.Title,
			OwnerID:   g.UserID,
			Feedback:  feedback,
		}},
	}, nil
}

// MarkAchieved completes a goal and pins its progress at 100.
func MarkAchieved(g *model.Goal, now time.Time) (Outcome, error) {
	if g.Achieved {
		return Outcome{}, NewValidationError(ErrGoalAchieved)
	}

	next := g.Clone()
	next.Achieved = true
	next.AchievedAt = &now
	next.Progress = 100
	next.UpdatedAt = now

	return Outcome{
		Goal: next,
		Fields: model.Fields{
			model.FieldAchieved:   true,
			model.FieldAchievedAt: now,
			model.FieldProgress:   100,
			model.FieldUpdatedAt:  now,
		},
		Notices: []Notice{achievedNotice(g)},
	}, nil
}

// UnmarkAchieved reopens a goal. Progress is left as it was.
func UnmarkAchieved(g *model.Goal, now time.Time) (Outcome, error) {
	if !g.Achieved {
		return Outcome{}, NewValidationError(ErrGoalNotAchieved)
	}

	next := g.Clone()
	next.Achieved = false
	next.AchievedAt = nil
	next.UpdatedAt = now

	return Outcome{
		Goal: next,
		Fields: model.Fields{
			model.FieldAchieved:   false,
			model.FieldAchievedAt: nil,
			model.FieldUpdatedAt:  now,
		},
	}, nil
}

func achievedNotice(g *model.Goal) Notice {
	return Notice{
		Kind:      NoticeAchieved,
		GoalID:    g.ID,
		GoalTitle: g.Title,
		OwnerID:   g.UserID,
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
