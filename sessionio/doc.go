// Package sessionio reads and writes the session's on-disk artifacts:
// per-source recording files, the merged transcript file and its markdown
// export.
//
// Recording files are JSON objects with a language, an optional top-level
// username and clock_offset, and a segments array of
// {start, end, text, username, confidence}. They are validated with struct
// tags on load. The merged file carries segments on the session clock plus
// a merged_info block.
//
//	paths, _ := sessionio.Discover(dir, sessionio.DefaultPattern, sessionio.DefaultMergedFilename)
//	recs, failures, err := sessionio.LoadAll(ctx, paths, sessionio.LoadOptions{})
//
// Writes go to a temporary file in the target directory and are renamed into
// place, so a crash never leaves a half-written transcript behind.
package sessionio
