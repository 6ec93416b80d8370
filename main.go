package main

import (
	"github.com/alecthomas/kong"
	"gorm.io/gorm"
)

type Context struct {
	Debug bool

	gorm.Config
}

var cli struct {
	Debug bool `help:"Enable debug mode."`

	Serve        ServeCmd        `cmd:"" help:"Serve the federation endpoints."`
	AutoMigrate  AutoMigrateCmd  `cmd:"" help:"Create or upgrade the database schema."`
	CreateArtist CreateArtistCmd `cmd:"" help:"Create an artist."`
	Keygen       KeygenCmd       `cmd:"" help:"Generate or rotate an artist's keypair."`
	ShowArtist   ShowArtistCmd   `cmd:"" help:"Show an artist and its followers."`
}

func main() {
	ctx := kong.Parse(&cli)
	err := ctx.Run(&Context{Debug: cli.Debug})
	ctx.FatalIfErrorf(err)
}
