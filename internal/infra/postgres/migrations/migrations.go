package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds every schema and seed migration for the bank database.
var Migrations = migrate.NewMigrations()
