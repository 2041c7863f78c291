// Package migrations embeds the SQL schema files into the binary and
// registers them with the database package.
package migrations

import (
	"embed"

	"github.com/nerrad567/gray-logic-sensorbridge/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
