package canvas

import (
	"log/slog"

	"github.com/gogpu/canvas/internal/logging"
)

// SetLogger configures the logger used by the canvas engine. The log
// calls are in this package's interpreter and diff code; the
// sub-packages do not log. By default the engine produces no log
// output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger
// atomically. Pass nil to disable logging (restore the default silent
// behavior).
//
// Log levels used by this package:
//   - [slog.LevelDebug]: changed-tile counts from DiffStates
//   - [slog.LevelInfo]: snapshot lifecycle events (layer created, canvas resized)
//   - [slog.LevelWarn]: a codec rejected a command's payload (the command
//     then fails with a DecodeError); the codec reports no non-fatal warnings
//
// Example:
//
//	// Enable info-level logging to stderr:
//	canvas.SetLogger(slog.Default())
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by the canvas engine.
// Safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Get()
}
