package ranking

// XPPerLevel is how much XP separates two levels.
const XPPerLevel = 1000

// Level maps total XP to a 1-based level.
func Level(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/XPPerLevel + 1
}

// NextLevelXP is the total XP at which level+1 starts.
func NextLevelXP(level int) int {
	if level < 1 {
		level = 1
	}
	return level * XPPerLevel
}

// Accuracy returns correct/total as a rounded percentage.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (correct*200 + total) / (total * 2)
}
