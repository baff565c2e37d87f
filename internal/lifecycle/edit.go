package lifecycle

import (
	"slices"
	"strings"
	"time"

	"github.com/stemcapstone/smartgoals/internal/model"
)

const maxTitleLength = 100

// Changes is an owner's edit to a goal. Nil fields are left alone. GroupID
// follows ProjectID and is filled in by the caller that resolved the project.
type Changes struct {
	Title          *string
	Specific       *string
	Measurable     *string
	Achievable     *string
	Relevant       *string
	TimeBoundStart *time.Time
	TimeBoundEnd   *time.Time
	StartDate      *time.Time
	ProjectID      *string
	GroupID        *string
}

func (c Changes) Empty() bool {
	return c.Title == nil && c.Specific == nil && c.Measurable == nil && c.Achievable == nil &&
		c.Relevant == nil && c.TimeBoundStart == nil && c.TimeBoundEnd == nil && c.StartDate == nil &&
		c.ProjectID == nil
}

// Edit applies an owner's changes. Editing a rejected goal resubmits it for
// review.
func Edit(g *model.Goal, c Changes, now time.Time) (Outcome, error) {
	if c.Empty() {
		return Outcome{}, NewValidationError(nil, FieldError{Field: "goal", Error: "no changes"})
	}

	next := g.Clone()
	fields := model.Fields{}

	text := func(dst *string, src *string, col string) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		*dst = v
		fields[col] = v
	}
	text(&next.Title, c.Title, model.FieldTitle)
	text(&next.Specific, c.Specific, model.FieldSpecific)
	text(&next.Measurable, c.Measurable, model.FieldMeasurable)
	text(&next.Achievable, c.Achievable, model.FieldAchievable)
	text(&next.Relevant, c.Relevant, model.FieldRelevant)

	date := func(dst *time.Time, src *time.Time, col string) {
		if src == nil {
			return
		}
		*dst = *src
		fields[col] = *src
	}
	date(&next.TimeBoundStart, c.TimeBoundStart, model.FieldTimeBoundStart)
	date(&next.TimeBoundEnd, c.TimeBoundEnd, model.FieldTimeBoundEnd)
	date(&next.StartDate, c.StartDate, model.FieldStartDate)

	if c.ProjectID != nil {
		next.ProjectID = c.ProjectID
		next.GroupID = c.GroupID
		fields[model.FieldProjectID] = *c.ProjectID
		if c.GroupID != nil {
			fields[model.FieldGroupID] = *c.GroupID
		} else {
			fields[model.FieldGroupID] = nil
		}
	}

	var errs []FieldError
	if next.Title == "" {
		errs = append(errs, FieldError{Field: model.FieldTitle, Error: "this field is required"})
	} else if len([]rune(next.Title)) > maxTitleLength {
		errs = append(errs, FieldError{Field: model.FieldTitle, Error: "must be at most 100 characters"})
	}
	for col, v := range map[string]string{
		model.FieldSpecific:   next.Specific,
		model.FieldMeasurable: next.Measurable,
		model.FieldAchievable: next.Achievable,
		model.FieldRelevant:   next.Relevant,
	} {
		if v == "" {
			errs = append(errs, FieldError{Field: col, Error: "this field is required"})
		}
	}
	if next.TimeBoundEnd.Before(next.TimeBoundStart) {
		errs = append(errs, FieldError{Field: model.FieldTimeBoundEnd, Error: ErrEndBeforeStart.Error()})
	}
	if len(errs) > 0 {
		sortFieldErrors(errs)
		return Outcome{}, NewValidationError(nil, errs...)
	}

	if g.ApprovalStatus == model.ApprovalRejected && approvals.IsValidTransition(g.ApprovalStatus, model.ApprovalPending) {
		next.ApprovalStatus = model.ApprovalPending
		fields[model.FieldApprovalStatus] = string(model.ApprovalPending)
	}

	next.UpdatedAt = now
	fields[model.FieldUpdatedAt] = now

	return Outcome{Goal: next, Fields: fields}, nil
}

func sortFieldErrors(errs []FieldError) {
	slices.SortFunc(errs, func(a, b FieldError) int {
		return strings.Compare(a.Field, b.Field)
	})
}
