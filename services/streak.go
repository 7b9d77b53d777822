package services

// streakLookback bounds how far back the leaderboard streak scan reads a
// user's resolved predictions. A current streak longer than this is reported
// as the cap, which is fine for display.
const streakLookback = 50

// CurrentStreak counts consecutive correct results starting from the most
// recent one. results must hold only resolved predictions, newest first.
func CurrentStreak(results []bool) int {
	streak := 0
	for _, correct := range results {
		if !correct {
			break
		}
		streak++
	}
	return streak
}

// BestStreak returns the longest run of consecutive correct results anywhere
// in the sequence.
func BestStreak(results []bool) int {
	best, run := 0, 0
	for _, correct := range results {
		if !correct {
			run = 0
			continue
		}
		run++
		if run > best {
			best = run
		}
	}
	return best
}
