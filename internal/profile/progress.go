package profile

// TargetFactCount is the number of stored facts considered full coverage.
// Tunable constant, not derived from the conversation.
const TargetFactCount = 18

// Progress maps a profile key count to a completion percentage in [0, 100].
// Integer division gives the floor.
func Progress(keyCount int) int {
	if keyCount <= 0 {
		return 0
	}
	pct := keyCount * 100 / TargetFactCount
	if pct > 100 {
		pct = 100
	}
	return pct
}
