package lifecycle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemcapstone/smartgoals/internal/model"
)

func TestClampProgress(t *testing.T) {
	tests := []struct {
		raw  float64
		want int
	}{
		{0, 0},
		{57.6, 58},
		{57.5, 58},
		{57.4, 57},
		{99.5, 100},
		{99.4, 99},
		{150, 100},
		{-20, 0},
		{-0.4, 0},
		{math.NaN(), 0},
		{math.Inf(1), 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampProgress(tt.raw), "raw %v", tt.raw)
	}
}

func TestSetProgressAutoAchieves(t *testing.T) {
	g := goal("g", day(-2))
	g.Progress = 80

	out := SetProgress(g, 100, now)

	assert.Equal(t, 100, out.Goal.Progress)
	assert.True(t, out.Goal.Achieved)
	require.NotNil(t, out.Goal.AchievedAt)
	assert.Equal(t, now, *out.Goal.AchievedAt)
	assert.Equal(t, true, out.Fields[model.FieldAchieved])
	require.Len(t, out.Notices, 1)
	assert.Equal(t, NoticeAchieved, out.Notices[0].Kind)
}

func TestSetProgressBelowHundredUnachieves(t *testing.T) {
	g := goal("g", day(-2))
	at := day(-1)
	g.Progress = 100
	g.Achieved = true
	g.AchievedAt = &at

	out := SetProgress(g, 99.2, now)

	assert.Equal(t, 99, out.Goal.Progress)
	assert.False(t, out.Goal.Achieved)
	assert.Nil(t, out.Goal.AchievedAt)
	assert.Equal(t, false, out.Fields[model.FieldAchieved])
	assert.Contains(t, out.Fields, model.FieldAchievedAt)
	assert.Empty(t, out.Notices)
}

func TestSetProgressKeepsAchievementFieldsWhenUnchanged(t *testing.T) {
	g := goal("g", day(-2))
	g.Progress = 10

	out := SetProgress(g, 42, now)

	assert.Equal(t, model.Fields{
		model.FieldProgress:  42,
		model.FieldUpdatedAt: now,
	}, out.Fields)
	assert.Equal(t, now, out.Goal.UpdatedAt)
}

func TestSetProgressInvariantHolds(t *testing.T) {
	for _, raw := range []float64{-5, 0, 33.3, 99.49, 99.5, 100, 250} {
		out := SetProgress(goal("g", day(-1)), raw, now)
		g := out.Goal
		assert.Equal(t, g.Progress == 100, g.Achieved, "raw %v", raw)
		assert.Equal(t, g.Achieved, g.AchievedAt != nil, "raw %v", raw)
	}
}
