// Package logger builds the service's *slog.Logger.
//
// New applies functional options on top of production defaults (JSON, INFO)
// and wraps the resulting handler with a decorator that copies request-scoped
// values, such as the request id, from context.Context into every record.
//
//	log := logger.New(
//	    logger.WithEnvironment(environment.Production, "authflow"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "session created", logger.UserID(user.ID), logger.SessionID(sess.ID))
//
// The attribute helpers in attr.go keep key names consistent across
// packages. SessionID never records a full session id.
package logger
