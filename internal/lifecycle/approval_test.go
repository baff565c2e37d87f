package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemcapstone/smartgoals/internal/model"
)

func TestApprovalMachine(t *testing.T) {
	m := NewApprovalMachine()

	tests := []struct {
		from model.ApprovalStatus
		to   model.ApprovalStatus
		want bool
	}{
		{model.ApprovalPending, model.ApprovalApproved, true},
		{model.ApprovalPending, model.ApprovalRejected, true},
		{model.ApprovalRejected, model.ApprovalApproved, true},
		{model.ApprovalApproved, model.ApprovalRejected, true},
		{model.ApprovalRejected, model.ApprovalPending, true},
		{model.ApprovalApproved, model.ApprovalPending, false},
		{model.ApprovalApproved, model.ApprovalApproved, false},
		{model.ApprovalPending, model.ApprovalPending, false},
		{"bogus", model.ApprovalApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, m.IsValidTransition(tt.from, tt.to))
		})
	}

	assert.Equal(t,
		[]model.ApprovalStatus{model.ApprovalApproved, model.ApprovalPending},
		m.AllowedTransitions(model.ApprovalRejected))
}

func TestApprove(t *testing.T) {
	g := goal("g", day(1))

	out, err := Approve(g, "teacher-1", "Nice scope", now)
	require.NoError(t, err)

	assert.Equal(t, model.ApprovalApproved, out.Goal.ApprovalStatus)
	require.NotNil(t, out.Goal.TeacherID)
	assert.Equal(t, "teacher-1", *out.Goal.TeacherID)
	require.NotNil(t, out.Goal.TeacherFeedback)
	assert.Equal(t, "Nice scope", *out.Goal.TeacherFeedback)
	assert.Equal(t, now, out.Goal.UpdatedAt)

	assert.Equal(t, model.Fields{
		model.FieldApprovalStatus:  "approved",
		model.FieldTeacherID:       "teacher-1",
		model.FieldTeacherFeedback: "Nice scope",
		model.FieldUpdatedAt:       now,
	}, out.Fields)

	require.Len(t, out.Notices, 1)
	assert.Equal(t, NoticeApproved, out.Notices[0].Kind)
	assert.Equal(t, g.UserID, out.Notices[0].OwnerID)

	assert.Equal(t, model.ApprovalPending, g.ApprovalStatus, "input goal must not change")
}

func TestRejectWithoutFeedbackClearsFeedback(t *testing.T) {
	g := goal("g", day(1))
	old := "old note"
	g.TeacherFeedback = &old

	out, err := Reject(g, "teacher-1", "", now)
	require.NoError(t, err)

	assert.Equal(t, model.ApprovalRejected, out.Goal.ApprovalStatus)
	assert.Nil(t, out.Goal.TeacherFeedback)
	assert.Nil(t, out.Fields[model.FieldTeacherFeedback])
	assert.Equal(t, NoticeRejected, out.Notices[0].Kind)
}

func TestApproveTwiceIsInvalid(t *testing.T) {
	g := goal("g", day(1))
	g.ApprovalStatus = model.ApprovalApproved

	_, err := Approve(g, "teacher-1", "", now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	var terr *TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, model.ApprovalApproved, terr.From)
}

func TestMarkAndUnmarkAchieved(t *testing.T) {
	g := goal("g", day(-3))
	g.Progress = 40

	out, err := MarkAchieved(g, now)
	require.NoError(t, err)
	assert.True(t, out.Goal.Achieved)
	assert.Equal(t, 100, out.Goal.Progress)
	require.NotNil(t, out.Goal.AchievedAt)
	assert.Equal(t, now, *out.Goal.AchievedAt)
	assert.Equal(t, NoticeAchieved, out.Notices[0].Kind)
	assert.Equal(t, BucketDone, Classify(out.Goal, now, nil))

	_, err = MarkAchieved(out.Goal, now)
	assert.True(t, errors.Is(err, ErrGoalAchieved))

	back, err := UnmarkAchieved(out.Goal, now)
	require.NoError(t, err)
	assert.False(t, back.Goal.Achieved)
	assert.Nil(t, back.Goal.AchievedAt)
	assert.Equal(t, 100, back.Goal.Progress, "progress is kept")
	assert.Contains(t, back.Fields, model.FieldAchievedAt)
	assert.NotContains(t, back.Fields, model.FieldProgress)

	_, err = UnmarkAchieved(back.Goal, now)
	assert.True(t, errors.Is(err, ErrGoalNotAchieved))
}
