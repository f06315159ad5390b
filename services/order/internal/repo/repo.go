package repo

import (
	"embed"

	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"

type GormRepo struct {
	DB *gorm.DB
}
