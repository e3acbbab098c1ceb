package patcher

import "strings"

// locateBlock finds block in lines at or after floor, preferring the match nearest to want.
// Exact matches win over whitespace-normalized ones.
func locateBlock(lines, block []string, want, floor int) (int, bool) {
	if len(block) == 0 {
		return 0, false
	}
	if at, ok := nearestMatch(lines, block, want, floor, exactLine); ok {
		return at, true
	}
	return nearestMatch(lines, block, want, floor, normalizedLine)
}

func nearestMatch(lines, block []string, want, floor int, equal func(a, b string) bool) (int, bool) {
	best, found := 0, false
	for i := max(floor, 0); i+len(block) <= len(lines); i++ {
		if !blockAt(lines, i, block, equal) {
			continue
		}
		if !found || distance(i, want) < distance(best, want) {
			best, found = i, true
		}
	}
	return best, found
}

func blockAt(lines []string, at int, block []string, equal func(a, b string) bool) bool {
	for j, want := range block {
		if !equal(lines[at+j], want) {
			return false
		}
	}
	return true
}

func exactLine(a, b string) bool {
	return a == b
}

func normalizedLine(a, b string) bool {
	return normalizeLineForMatching(a) == normalizeLineForMatching(b)
}

// normalizeLineForMatching trims a line and collapses internal whitespace runs to one space.
func normalizeLineForMatching(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
