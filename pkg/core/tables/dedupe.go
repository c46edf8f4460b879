package tables

import "sort"

// Dedupe resolves overlaps between candidate regions from different
// strategies. Candidates are ordered by (start line, descending confidence);
// a candidate is accepted unless it overlaps an already-accepted region, in
// which case the one with strictly higher confidence survives. The result is
// sorted by start line and no line index belongs to two regions.
func Dedupe(candidates []Region) []Region {
	if len(candidates) == 0 {
		return nil
	}

	sorted := append([]Region(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartLine != sorted[j].StartLine {
			return sorted[i].StartLine < sorted[j].StartLine
		}
		return sorted[i].Confidence > sorted[j].Confidence
	})

	var accepted []Region
	for _, cand := range sorted {
		overlap := false
		for k := range accepted {
			if !cand.Overlaps(accepted[k]) {
				continue
			}
			overlap = true
			if cand.Confidence > accepted[k].Confidence {
				accepted[k] = cand
			}
			break
		}
		if !overlap {
			accepted = append(accepted, cand)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].StartLine < accepted[j].StartLine
	})
	return accepted
}
