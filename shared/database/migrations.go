package database

import "embed"

// MigrationsPath указывает каталог с файлами миграций внутри MigrationsFS.
const MigrationsPath = "migrations"

//go:embed migrations/*.sql
var MigrationsFS embed.FS
