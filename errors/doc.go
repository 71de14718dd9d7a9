// Package errors provides the structured error type shared by the
// deduplicator, the timeline merger and the file collaborators.
// Errors carry a machine-readable code, optional details (source id,
// segment index) and a cause. Sentinels such as ErrInputUnsorted match
// any AppError with the same code through errors.Is.
package errors
