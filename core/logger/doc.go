// Package logger provides slog attribute helpers shared across authkit
// components.
//
// All helpers follow the empty Attr pattern: a nil error, empty ID, or
// uuid.Nil produces an empty attribute that slog silently drops, so call
// sites never need explicit nil checks:
//
//	log.Warn("session lookup failed",
//		logger.Component("session"),
//		logger.SessionID(id),
//		logger.Error(err),
//	)
//
// Components accept a *slog.Logger through their functional options and
// default to a discard logger, so logging is always safe to call and never
// a required dependency.
package logger
