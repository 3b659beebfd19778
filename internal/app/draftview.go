package app

import "math"

// progressPercent maps a draft's per-section completion flags to a whole
// percentage over the canonical section count. Only true entries count;
// unknown extra keys inflate nothing because total stays fixed.
func progressPercent(sections map[string]bool, total int) int {
	if total <= 0 {
		return 0
	}
	completed := 0
	for _, done := range sections {
		if done {
			completed++
		}
	}
	if completed > total {
		completed = total
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// firstIncomplete returns the first section in canonical order that is not
// marked complete, or "" when every section is done.
func firstIncomplete(order []string, sections map[string]bool) string {
	for _, id := range order {
		if !sections[id] {
			return id
		}
	}
	return ""
}
