package models

import (
	"time"

	"github.com/tonearm/tonearm/internal/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// A Follower records that a remote actor follows a local artist.
// (ArtistID, ActorURI) is unique; re-follows update the row in place.
type Follower struct {
	ArtistID snowflake.ID `gorm:"primarykey;autoIncrement:false"`
	Artist   *Artist      `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	// ActorURI is the remote actor's globally unique identifier.
	ActorURI string `gorm:"primarykey;size:255"`
	// InboxURI is the delivery target for activities addressed to the actor.
	InboxURI string `gorm:"size:255;not null"`
	// SharedInboxURI, when present, is the preferred delivery target.
	SharedInboxURI string `gorm:"size:255;not null;default:''"`
	CreatedAt      time.Time
}

// Inbox returns the follower's shared inbox URL if it has one, otherwise
// its personal inbox URL.
func (f *Follower) Inbox() string {
	if f.SharedInboxURI != "" {
		return f.SharedInboxURI
	}
	return f.InboxURI
}

type Followers struct {
	db *gorm.DB
}

func NewFollowers(db *gorm.DB) *Followers {
	return &Followers{db: db}
}

// Add records that actorURI follows the artist. Adding an existing follower
// refreshes its inbox URIs rather than creating a duplicate row.
func (f *Followers) Add(artistID snowflake.ID, actorURI, inboxURI, sharedInboxURI string) error {
	follower := Follower{
		ArtistID:       artistID,
		ActorURI:       actorURI,
		InboxURI:       inboxURI,
		SharedInboxURI: sharedInboxURI,
	}
	return f.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "artist_id"}, {Name: "actor_uri"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"inbox_uri",
			"shared_inbox_uri",
		}),
	}).Create(&follower).Error
}

// Remove deletes the follower relationship. Removing a relationship that
// does not exist is a no-op.
func (f *Followers) Remove(artistID snowflake.ID, actorURI string) error {
	return f.db.Where("artist_id = ? AND actor_uri = ?", artistID, actorURI).Delete(&Follower{}).Error
}

// ListByArtist returns the artist's followers in the order they followed.
func (f *Followers) ListByArtist(artistID snowflake.ID) ([]Follower, error) {
	var followers []Follower
	return followers, f.db.Where("artist_id = ?", artistID).Order("created_at, actor_uri").Find(&followers).Error
}

// CountByArtist returns the number of followers of the artist.
func (f *Followers) CountByArtist(artistID snowflake.ID) (int64, error) {
	var count int64
	return count, f.db.Model(&Follower{}).Where("artist_id = ?", artistID).Count(&count).Error
}
