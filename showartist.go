package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-json-experiment/json"
	"github.com/tonearm/tonearm/models"
	"gorm.io/gorm"
)

type ShowArtistCmd struct {
	DSN  string `required:"" help:"data source name" env:"TONEARM_DSN"`
	Slug string `required:"" help:"slug of the artist to show"`
}

func (s *ShowArtistCmd) Run(ctx *Context) error {
	db, err := gorm.Open(newDialector(s.DSN), &ctx.Config)
	if err != nil {
		return err
	}

	artist, err := models.NewArtists(db).FindBySlug(s.Slug)
	if err != nil {
		return err
	}
	followers, err := models.NewFollowers(db).ListByArtist(artist.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s) federation capable: %v, followers: %d\n", artist.Name, artist.Slug, artist.FederationCapable(), len(followers))
	for _, follower := range followers {
		if err := printFollower(os.Stdout, &follower); err != nil {
			return err
		}
	}
	return nil
}

func printFollower(w io.Writer, follower *models.Follower) error {
	if err := (json.MarshalOptions{}).MarshalFull(json.EncodeOptions{Indent: "  "}, w, map[string]any{
		"actor":       follower.ActorURI,
		"inbox":       follower.InboxURI,
		"sharedInbox": follower.SharedInboxURI,
		"since":       follower.CreatedAt,
	}); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
