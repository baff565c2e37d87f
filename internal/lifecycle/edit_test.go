package lifecycle

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemcapstone/smartgoals/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestEditPartial(t *testing.T) {
	g := goal("g", day(1))

	out, err := Edit(g, Changes{Title: ptr("  Build a rover  ")}, now)
	require.NoError(t, err)

	assert.Equal(t, "Build a rover", out.Goal.Title)
	assert.Equal(t, model.Fields{
		model.FieldTitle:     "Build a rover",
		model.FieldUpdatedAt: now,
	}, out.Fields)
}

func TestEditRejectedResubmits(t *testing.T) {
	g := goal("g", day(1))
	g.ApprovalStatus = model.ApprovalRejected

	out, err := Edit(g, Changes{Specific: ptr("narrower")}, now)
	require.NoError(t, err)

	assert.Equal(t, model.ApprovalPending, out.Goal.ApprovalStatus)
	assert.Equal(t, "pending", out.Fields[model.FieldApprovalStatus])
}

func TestEditValidation(t *testing.T) {
	g := goal("g", day(1))

	tests := []struct {
		name   string
		change Changes
		field  string
	}{
		{"empty title", Changes{Title: ptr("   ")}, model.FieldTitle},
		{"long title", Changes{Title: ptr(strings.Repeat("x", 101))}, model.FieldTitle},
		{"blank relevant", Changes{Relevant: ptr("")}, model.FieldRelevant},
		{"end before start", Changes{TimeBoundEnd: ptr(g.TimeBoundStart.Add(-time.Hour))}, model.FieldTimeBoundEnd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Edit(g, tt.change, now)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestEditNoChanges(t *testing.T) {
	_, err := Edit(goal("g", day(1)), Changes{}, now)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEditProjectMovesGroup(t *testing.T) {
	g := goal("g", day(1))

	out, err := Edit(g, Changes{ProjectID: ptr("p2"), GroupID: ptr("group-2")}, now)
	require.NoError(t, err)

	assert.Equal(t, "p2", *out.Goal.ProjectID)
	assert.Equal(t, "group-2", *out.Goal.GroupID)
	assert.Equal(t, "group-2", out.Fields[model.FieldGroupID])
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-04-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), d)

	ts, err := ParseDate("2025-04-01T08:30:00+02:00")
	require.NoError(t, err)
	assert.True(t, ts.Equal(time.Date(2025, 4, 1, 6, 30, 0, 0, time.UTC)))

	_, err = ParseDate("04/01/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseDate("")
	assert.ErrorIs(t, err, ErrValidation)
}
