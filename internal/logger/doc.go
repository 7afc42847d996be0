// Package logger wraps zap for both aevum binaries:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and an option to pin a logger to its own level,
//   - file output for the touchscreen client, whose terminal belongs to the UI.
//
// Services accept a context and log through the logger stored in it, so the
// alarm bridge, the audio controller and the store daemon all log with
// their own names attached.
package logger
