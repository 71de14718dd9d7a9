// Package transcript defines the data model shared by the deduplicator,
// the timeline merger and the file collaborators.
//
// A Recording is one speaker's speech-to-text output: an ordered list of
// Segments plus the language and the clock offset that aligns it to the
// session clock. A MergedTranscript is the reconciled session: segments
// from every recording on one timeline, each still tagged with the
// username it came from, plus aggregate MergedInfo.
//
// Values are treated as immutable once handed to the engine; helpers
// such as Recording.Clone and Segment.Shifted return copies.
package transcript
