package main

import (
	"fmt"

	"github.com/tonearm/tonearm/internal/crypto"
	"github.com/tonearm/tonearm/models"
	"gorm.io/gorm"
)

type KeygenCmd struct {
	DSN  string `required:"" help:"data source name" env:"TONEARM_DSN"`
	Slug string `required:"" help:"slug of the artist to provision keys for"`
}

func (k *KeygenCmd) Run(ctx *Context) error {
	db, err := gorm.Open(newDialector(k.DSN), &ctx.Config)
	if err != nil {
		return err
	}

	artists := models.NewArtists(db)
	artist, err := artists.FindBySlug(k.Slug)
	if err != nil {
		return err
	}
	keypair, err := crypto.GenerateRSAKeypair()
	if err != nil {
		return err
	}
	if err := artists.SetKeypair(artist, keypair.PublicKey, keypair.PrivateKey); err != nil {
		return err
	}
	fmt.Print(string(keypair.PublicKey))
	return nil
}
