// Package ui renders terminal output for the one-shot homedash commands.
//
// Interactive use goes through package tui. The components here follow a
// "print once and exit" pattern instead:
//
//   - Header: command banner showing the operation and its parameters
//   - Result: success, warning and failure boxes with troubleshooting tips
//   - Status: snapshot reports for `homedash status` and `homedash watch`
//
// # Logging Integration
//
// zap logging is silent unless HOMEDASH_LOG_LEVEL (or --log-level) is set,
// so the styled output is not interleaved with log lines.
package ui
