// Package pg connects to PostgreSQL through pgxpool and applies goose
// migrations from an fs.FS.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, cfg, log); err != nil {
//		return err
//	}
//
// Connect retries with a linear backoff so the service can start before
// the database is ready. Error helpers classify pgconn errors by SQLSTATE.
package pg
