package timeline

import (
	"sort"

	"github.com/samber/lo"

	"github.com/kbukum/sessionscribe/transcript"
)

// recordingID is the recording's own source id, or the first segment's username.
func recordingID(rec transcript.Recording) string {
	if rec.SourceID != "" {
		return rec.SourceID
	}
	if seg, ok := lo.Find(rec.Segments, func(s transcript.Segment) bool { return s.SourceID != "" }); ok {
		return seg.SourceID
	}
	return ""
}

// ranks returns the tie-break rank of every recording, indexed by input position.
// Lower ranks win ties.
func ranks(recs []transcript.Recording, priority []string) []int {
	pos := make(map[string]int, len(priority))
	for i, id := range priority {
		if _, seen := pos[id]; !seen {
			pos[id] = i
		}
	}
	order := make([]int, len(recs))
	for i := range order {
		order[i] = i
	}
	ids := lo.Map(recs, func(r transcript.Recording, _ int) string { return recordingID(r) })
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		pa, okA := pos[ids[ia]]
		pb, okB := pos[ids[ib]]
		switch {
		case okA && okB && pa != pb:
			return pa < pb
		case okA != okB:
			return okA
		case ids[ia] != ids[ib]:
			return ids[ia] < ids[ib]
		}
		return ia < ib
	})
	out := make([]int, len(recs))
	for r, idx := range order {
		out[idx] = r
	}
	return out
}
