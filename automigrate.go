package main

import (
	"github.com/tonearm/tonearm/models"
	"gorm.io/gorm"
)

type AutoMigrateCmd struct {
	DSN string `required:"" help:"data source name" env:"TONEARM_DSN"`
}

func (a *AutoMigrateCmd) Run(ctx *Context) error {
	db, err := gorm.Open(newDialector(a.DSN), &ctx.Config)
	if err != nil {
		return err
	}

	return db.AutoMigrate(models.AllTables()...)
}
