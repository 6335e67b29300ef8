// Package log provides logging utilities for orphanscan, built on top of
// the standard slog package.
//
// The scanner logs file paths and occasionally content excerpts while
// walking large component trees. The SnippetHandler wraps any slog
// handler and truncates oversized string attribute values so that a
// multi-kilobyte component file logged at debug level never floods the
// terminal or a captured log file.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("scanning file",
//	    "path", "widgets/Button.tsx",
//	    "content", content, // truncated to a short excerpt
//	)
package log
