// Package dedup removes speech-recognition repetition artifacts from a
// single recording.
//
// Whisper-style engines sometimes emit the same utterance twice in a row,
// a fraction of a second apart. Deduplicate scans a recording once, left
// to right, comparing each segment with the last segment it kept. A
// candidate is a duplicate when its normalized text is at least
// SimilarityThreshold similar AND it starts no later than TimeWindow
// seconds after the kept segment ends. The same phrase repeated further
// apart is left alone.
//
// When two segments collapse into one, the survivor carries the text of
// the more confident segment (then the shorter one, then the earlier one)
// and spans both, so session duration is never shortened.
//
// Malformed segments (non-finite or inverted timestamps, empty text) are
// dropped and reported as warnings; only an unsorted input fails the call.
package dedup
