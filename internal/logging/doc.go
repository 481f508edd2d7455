// Package logging provides structured logging for homedash.
//
// This package wraps a package-global zap logger with convenience functions
// for the events the dashboard core produces: status polls, skipped ticks,
// control commands and PIN keypad submissions.
//
// # Silent by default
//
// homedash is an interactive tool, so nothing is logged unless a level is
// requested, either with --log-level or the HOMEDASH_LOG_LEVEL environment
// variable:
//
//	if err := logging.Initialize(logging.Options{Level: "debug", File: "homedash.log"}); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// While the terminal dashboard is running, pass a File so log lines do not
// corrupt the rendered screen.
//
// # Structured Logging
//
//	logging.LogCommand(requestID, "arm_system", "/system/arm", err)
//	logging.LogPoll("tick", elapsed, err)
//
// All functions are safe for concurrent use.
package logging
