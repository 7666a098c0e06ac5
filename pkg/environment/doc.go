// Package environment names the deployment environment the service runs in
// and carries it through context.Context.
//
// The environment decides production-like defaults elsewhere in the module,
// most notably whether session cookies carry the Secure attribute:
//
//	env := environment.Parse(os.Getenv("APP_ENV"))
//	secure := env.IsProductionLike()
//
// Middleware attaches the value to every request context and LoggerExtractor
// exposes it to slog handlers built by pkg/logger.
package environment
