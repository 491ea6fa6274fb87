// Package logger builds *slog.Logger instances with a small set of functional
// options, standardising structured logging across the checker components.
//
// Every component takes an injected *slog.Logger; this package provides the
// single factory used at the composition root plus attribute helpers to keep
// field naming consistent. Components that receive no logger should fall back
// to Discard so that library code never writes to a default destination it
// does not own.
//
// # Usage
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithFormat(logger.FormatText),
//		logger.WithAttr(slog.String("service", "username-checker")),
//	)
//	log.Info("batch started", logger.Component("orchestrator"))
package logger
