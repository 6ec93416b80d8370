package main

import (
	"github.com/tonearm/tonearm/internal/crypto"
	"github.com/tonearm/tonearm/internal/snowflake"
	"github.com/tonearm/tonearm/models"
	"gorm.io/gorm"
)

type CreateArtistCmd struct {
	DSN  string `required:"" help:"data source name" env:"TONEARM_DSN"`
	Slug string `required:"" help:"URL slug of the artist to create"`
	Name string `help:"display name, defaults to the slug"`
	Bio  string `help:"short biography"`
	Keys bool   `help:"provision a signing keypair"`
}

func (c *CreateArtistCmd) Run(ctx *Context) error {
	db, err := gorm.Open(newDialector(c.DSN), &ctx.Config)
	if err != nil {
		return err
	}

	name := c.Name
	if name == "" {
		name = c.Slug
	}
	artist := &models.Artist{
		ID:   snowflake.Now(),
		Slug: c.Slug,
		Name: name,
		Bio:  c.Bio,
	}
	if c.Keys {
		keypair, err := crypto.GenerateRSAKeypair()
		if err != nil {
			return err
		}
		artist.PublicKey = keypair.PublicKey
		artist.PrivateKey = keypair.PrivateKey
	}
	return db.Create(artist).Error
}
