// Package storage implements the user and session stores on PostgreSQL.
//
// Users satisfies auth.UserStorage and Sessions satisfies session.Store.
// Both take a DBTX, so a *pgxpool.Pool, a single connection or a
// transaction can back them. The schema lives in the embedded migrations
// directory and is applied with pg.Migrate:
//
//	if err := pg.Migrate(ctx, pool, storage.Migrations(), cfg, log); err != nil {
//	    return err
//	}
//	users := storage.NewUsers(pool)
//	sessions := storage.NewSessions(pool)
package storage
