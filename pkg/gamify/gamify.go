// Package gamify holds the progression rules layered on top of the ledger:
// experience-derived levels and streak milestone rewards.
package gamify

// levelThresholds[i] is the minimum lifetime experience for level i+1.
// Experience accrues one point per token credited, so levels only ever go up.
var levelThresholds = []int64{0, 100, 500, 1500, 4000, 10000, 25000, 60000}

// LevelForExperience derives a user's level from lifetime experience.
// Deriving at read time keeps the stored profile free of a second
// monotonic counter that could regress under concurrent writes.
func LevelForExperience(exp int64) int {
	level := 1
	for i, threshold := range levelThresholds {
		if exp >= threshold {
			level = i + 1
		}
	}
	return level
}

// StreakMilestone is a consecutive-day mark that pays a one-time reward.
type StreakMilestone struct {
	Days   int
	Reward int64
}

// Milestones in ascending order. Each pays at most once per streak run,
// tracked via the profile's streak_paid_through marker.
var streakMilestones = []StreakMilestone{
	{Days: 3, Reward: 50},
	{Days: 7, Reward: 150},
	{Days: 14, Reward: 400},
	{Days: 30, Reward: 1000},
}

// StreakRewardFor returns the highest unpaid milestone a streak of the given
// length has reached, or ok=false when nothing is claimable.
func StreakRewardFor(streakDays, paidThrough int) (StreakMilestone, bool) {
	var best StreakMilestone
	found := false
	for _, m := range streakMilestones {
		if streakDays >= m.Days && paidThrough < m.Days {
			best = m
			found = true
		}
	}
	return best, found
}
