// Package database provides the SQLite store used when topic configuration
// is kept in a database rather than a topics file (topics.source: database).
//
// Open applies WAL mode and the busy timeout through the DSN. Migrate applies
// the embedded schema files registered by the migrations package:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql. Each one is applied in its own transaction
// and recorded in schema_migrations.
package database
