package lifecycle

import (
	"slices"

	"github.com/stemcapstone/smartgoals/internal/model"
)

// Actor is the caller of an engine operation.
type Actor struct {
	UserID string
	Role   model.Role
	// Groups the actor teaches. Ignored for admins.
	Groups []string
}

func (a Actor) IsTeacher() bool {
	return a.Role == model.RoleTeacher || a.Role == model.RoleAdmin
}

// Teaches reports whether the actor reviews goals of the given group.
func (a Actor) Teaches(groupID *string) bool {
	if a.Role == model.RoleAdmin {
		return true
	}
	if a.Role != model.RoleTeacher || groupID == nil {
		return false
	}
	return slices.Contains(a.Groups, *groupID)
}

// CanReview guards approval and achievement transitions.
func CanReview(g *model.Goal, a Actor) error {
	if !a.IsTeacher() {
		return denied("only teachers can review goals")
	}
	if !a.Teaches(g.GroupID) {
		return denied("goal %s is not in a group you teach", g.ID)
	}
	return nil
}

// CanSchedule guards progress, start-early and postpone.
func CanSchedule(g *model.Goal, a Actor) error {
	if g.OwnedBy(a.UserID) || a.Teaches(g.GroupID) {
		return nil
	}
	return denied("goal %s belongs to another student", g.ID)
}

// CanView reports whether the actor may read the goal.
func CanView(g *model.Goal, a Actor) error {
	return CanSchedule(g, a)
}

// CanEdit guards changes to the SMART content, dates and project. Only the
// owner edits, and never while the goal is approved.
func CanEdit(g *model.Goal, a Actor) error {
	if !g.OwnedBy(a.UserID) {
		return denied("only the owner can edit goal %s", g.ID)
	}
	if g.ApprovalStatus == model.ApprovalApproved {
		return &LockedError{GoalID: g.ID, Status: g.ApprovalStatus, Action: "edit"}
	}
	return nil
}

// CanDelete lets teachers of the goal's group delete anything. Owners may
// delete goals that are pending, rejected or achieved.
func CanDelete(g *model.Goal, a Actor) error {
	if a.Teaches(g.GroupID) {
		return nil
	}
	if !g.OwnedBy(a.UserID) {
		return denied("only the owner can delete goal %s", g.ID)
	}
	if g.Achieved || g.ApprovalStatus == model.ApprovalPending || g.ApprovalStatus == model.ApprovalRejected {
		return nil
	}
	return &LockedError{GoalID: g.ID, Status: g.ApprovalStatus, Action: "delete"}
}
