// Package timeline merges per-source recordings into one transcript ordered
// by absolute session time.
//
// Merge is a k-way merge over one cursor per recording, kept in a priority
// queue keyed by absolute start time. Segments that start at the same
// instant are ordered by a stable recording rank: the position in
// Options.Priority when listed, then alphabetical source id, then input
// position. Filesystem order never affects the result.
//
//	mt, report, err := timeline.Merge(recs, timeline.Options{Priority: []string{"GM"}})
//
// Recordings without usable segments are excluded and reported, but their
// language is still listed in the merged metadata.
package timeline
