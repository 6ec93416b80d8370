package workers

import (
	"context"
	"time"

	"github.com/tonearm/tonearm/activitypub"
	"github.com/tonearm/tonearm/models"
	"golang.org/x/exp/slog"
	"gorm.io/gorm"
)

// NewDeliveryProcessor retries queued activity deliveries whose synchronous
// attempt failed. Requests are abandoned after three attempts.
func NewDeliveryProcessor(db *gorm.DB, logger *slog.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		logger.Info("DeliveryProcessor started")
		defer logger.Info("DeliveryProcessor stopped")

		db := db.WithContext(ctx)
		for {
			if err := process(db, deliveryRequestScope, processDeliveryRequest(logger)); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(30 * time.Second):
				// continue
			}
		}
	}
}

func deliveryRequestScope(db *gorm.DB) *gorm.DB {
	return db.Preload("Artist").Where("attempts < 3")
}

func processDeliveryRequest(logger *slog.Logger) func(db *gorm.DB, request *models.DeliveryRequest) error {
	return func(db *gorm.DB, request *models.DeliveryRequest) error {
		logger.Info("DeliveryProcessor: delivering", "inbox", request.InboxURI, "attempts", request.Attempts)
		keypair, err := activitypub.SigningKeypair(request.Artist)
		if err != nil {
			return err
		}
		if keypair == nil {
			// keys were removed after the request was queued; drop it
			logger.Warn("DeliveryProcessor: artist has no keypair, dropping", "artist", request.Artist.Slug)
			return nil
		}
		client := activitypub.NewClient(request.KeyID, keypair.PrivateKey)
		return client.Post(db.Statement.Context, request.InboxURI, request.Activity)
	}
}
