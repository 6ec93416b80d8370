package models

import (
	"time"

	"github.com/tonearm/tonearm/internal/snowflake"
	"gorm.io/gorm"
)

// An Artist is a locally hosted performer. The catalog application owns the
// row; the federation layer treats it as a read-only identity, except for
// key provisioning.
type Artist struct {
	ID        snowflake.ID `gorm:"primarykey;autoIncrement:false"`
	UpdatedAt time.Time
	Slug      string `gorm:"size:64;uniqueIndex;not null"`
	Name      string `gorm:"size:255;not null"`
	Bio       string `gorm:"type:text"`
	// PublicKey is the artist's public key in PEM format.
	// Empty until keys have been provisioned.
	PublicKey []byte
	// PrivateKey is the artist's private key in PEM format.
	// It is never serialized outward.
	PrivateKey []byte
}

// FederationCapable reports whether the artist has a full keypair and can
// sign outbound activities.
func (a *Artist) FederationCapable() bool {
	return len(a.PublicKey) > 0 && len(a.PrivateKey) > 0
}

type Artists struct {
	db *gorm.DB
}

func NewArtists(db *gorm.DB) *Artists {
	return &Artists{db: db}
}

// FindBySlug returns the artist with the given slug.
func (a *Artists) FindBySlug(slug string) (*Artist, error) {
	var artist Artist
	return &artist, a.db.Take(&artist, "slug = ?", slug).Error
}

// FindByID returns the artist with the given id.
func (a *Artists) FindByID(id snowflake.ID) (*Artist, error) {
	var artist Artist
	return &artist, a.db.Take(&artist, "id = ?", id).Error
}

// SetKeypair stores a new keypair for the artist, replacing any previous one.
func (a *Artists) SetKeypair(artist *Artist, publicKey, privateKey []byte) error {
	return a.db.Model(artist).Updates(map[string]interface{}{
		"public_key":  publicKey,
		"private_key": privateKey,
	}).Error
}
