package lifecycle

import (
	"slices"
	"time"

	"github.com/stemcapstone/smartgoals/internal/model"
)

// Sort orders a bucket in place. Done goals are newest achievement first with
// unknown achievement times last; the other buckets are earliest start first.
// Ties keep their input order.
func Sort(bucket Bucket, goals []*model.Goal) {
	if bucket == BucketDone {
		slices.SortStableFunc(goals, byAchievedDesc)
		return
	}
	slices.SortStableFunc(goals, byStartAsc)
}

func byAchievedDesc(a, b *model.Goal) int {
	return achievedAt(b).Compare(achievedAt(a))
}

func byStartAsc(a, b *model.Goal) int {
	return a.StartDate.Compare(b.StartDate)
}

func achievedAt(g *model.Goal) time.Time {
	if g.AchievedAt == nil {
		return time.Unix(0, 0)
	}
	return *g.AchievedAt
}
