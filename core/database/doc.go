// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly configure
// MySQL and SQLite connections based on the application's configuration.
//
// # Connect
//
// The generic Connect function establishes a connection for the configured
// driver: MySQL for deployments, SQLite for local runs and tests. It is
// agnostic to the schema; the emulator migrates or verifies its own tables
// on top of the returned connection.
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema. The emulator
// uses them on startup to verify that an existing database provides the
// expected record and file tables before serving from it.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "archive_records")
package database
