package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/stemcapstone/smartgoals/internal/lifecycle"
	"github.com/stemcapstone/smartgoals/internal/model"
)

func TestPrintBuckets(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	b := lifecycle.Buckets{
		Todo: []*model.Goal{},
		Doing: []*model.Goal{{
			ID:             "g1",
			Title:          "Weather station",
			ApprovalStatus: model.ApprovalApproved,
			Progress:       40,
			StartDate:      start,
		}},
		Done: []*model.Goal{},
	}

	var buf bytes.Buffer
	printBuckets(&buf, b)
	out := buf.String()

	assert.Contains(t, out, "Todo - 0")
	assert.Contains(t, out, "Doing - 1")
	assert.Contains(t, out, "Weather station")
	assert.Contains(t, out, "Approved")
	assert.Contains(t, out, "40%")
	assert.Contains(t, out, "2025-04-01")
	assert.Contains(t, out, "none")
}
