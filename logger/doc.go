// Package logger provides structured logging using zerolog.
//
// It supports JSON and console output, level configuration, a named
// registry of component loggers, and helpers that tag lines with the
// recording (source id) and reconcile run they belong to. Logs go to
// stderr by default so a merged transcript can be piped from stdout.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("dedup").WithSource("Alice")
//	log.Warn("segment dropped", logger.Fields(logger.FieldSegmentIndex, 4))
package logger
