package sessionio

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/kbukum/sessionscribe/errors"
)

const (
	// DefaultPattern matches per-source transcription files.
	DefaultPattern = "*_transcription*.json"
	// DefaultMergedFilename is the merged transcript written by merge.
	DefaultMergedFilename = "merged_transcription.json"
	// DefaultCleanSuffix is appended to the stem of deduplicated recordings.
	DefaultCleanSuffix = "_deduped"
)

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.IO("read", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.InvalidInput("file", "malformed JSON").
			WithCause(err).
			WithDetail("path", path)
	}
	return nil
}

// writeJSON writes v as indented JSON through a temp file and rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Internal(err)
	}
	data = append(data, '\n')
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.IO("mkdir", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.IO("create", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.IO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.IO("write", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.IO("chmod", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.IO("rename", path, err)
	}
	return nil
}
