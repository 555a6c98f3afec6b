package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	"github.com/dmitrijs2005/repoboard/internal/server/events"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/repoboard/internal/server/storage"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
	"github.com/dustin/go-humanize"
)

// UploadTicket tells the client where to PUT the image bytes.
type UploadTicket struct {
	StorageKey string    `json:"storageKey"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type ImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     ObjectStorage
	access      *AccessService
	publisher   Publisher
	logger      logging.Logger
	maxSize     int64
	urlTTL      time.Duration
	newKey      func(widgetID string) string
}

func NewImageService(db *sql.DB, m repomanager.RepositoryManager, st ObjectStorage, access *AccessService,
	maxSize int64, urlTTL time.Duration, pub Publisher, logger logging.Logger) *ImageService {
	if pub == nil {
		pub = nopPublisher{}
	}
	if urlTTL <= 0 {
		urlTTL = storage.DefaultURLTTL
	}
	return &ImageService{
		db:          db,
		repomanager: m,
		storage:     st,
		access:      access,
		publisher:   pub,
		logger:      logger.With("module", "image"),
		maxSize:     maxSize,
		urlTTL:      urlTTL,
		newKey:      storage.NewKey,
	}
}

// RequestUpload validates the announced image and returns a presigned PUT
// URL for it. The asset stays pending until ConfirmUpload.
func (s *ImageService) RequestUpload(ctx context.Context, userID, widgetID, contentType string, size int64) (*UploadTicket, error) {
	verr := &common.ValidationError{}
	if !strings.HasPrefix(contentType, "image/") {
		verr.Add("contentType", "must be an image type")
	}
	if size <= 0 {
		verr.Add("size", "must be positive")
	} else if s.maxSize > 0 && size > s.maxSize {
		verr.Add("size", "must not exceed "+humanize.Bytes(uint64(s.maxSize)))
	}
	if !verr.Empty() {
		return nil, verr
	}

	w, err := widgetOfType(ctx, s.repomanager, s.db, widgetID, widgets.TypeImage)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RequireBoardWrite(ctx, userID, w.BoardID); err != nil {
		return nil, err
	}

	key := s.newKey(widgetID)
	url, err := s.storage.PresignPut(ctx, key, contentType, size, s.urlTTL)
	if err != nil {
		return nil, err
	}

	asset := &models.ImageAsset{
		WidgetID:    widgetID,
		StorageKey:  key,
		ContentType: contentType,
		Size:        size,
		Status:      models.ImageStatusPending,
		UploadedBy:  userID,
	}
	if err := s.repomanager.Images(s.db).Upsert(ctx, asset); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "image upload requested", "widget_id", widgetID, "size", humanize.Bytes(uint64(size)))
	return &UploadTicket{StorageKey: key, URL: url, ExpiresAt: time.Now().Add(s.urlTTL)}, nil
}

// ConfirmUpload marks the asset with storageKey as uploaded. Confirming a
// key that a newer request replaced yields common.ErrorNotFound.
func (s *ImageService) ConfirmUpload(ctx context.Context, userID, widgetID, storageKey string) (*models.ImageAsset, error) {
	w, err := widgetOfType(ctx, s.repomanager, s.db, widgetID, widgets.TypeImage)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RequireBoardWrite(ctx, userID, w.BoardID); err != nil {
		return nil, err
	}

	repo := s.repomanager.Images(s.db)
	if err := repo.MarkUploaded(ctx, widgetID, storageKey); err != nil {
		return nil, err
	}
	asset, err := repo.Get(ctx, widgetID)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(events.Event{BoardID: w.BoardID, WidgetID: widgetID, Kind: events.FeatureChanged})
	return asset, nil
}

// URL returns a presigned GET URL of the widget's uploaded image.
func (s *ImageService) URL(ctx context.Context, widgetID string) (string, time.Time, error) {
	asset, err := s.repomanager.Images(s.db).Get(ctx, widgetID)
	if err != nil {
		return "", time.Time{}, err
	}
	if asset.Status != models.ImageStatusUploaded {
		return "", time.Time{}, common.ErrorNotFound
	}
	url, err := s.storage.PresignGet(ctx, asset.StorageKey, s.urlTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return url, time.Now().Add(s.urlTTL), nil
}

// DeleteImageHook removes the asset row and, best-effort, the object.
func (s *ImageService) DeleteImageHook(ctx context.Context, w *models.Widget) error {
	repo := s.repomanager.Images(s.db)
	asset, err := repo.Get(ctx, w.ID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, w.ID); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, asset.StorageKey); err != nil {
		s.logger.Warn(ctx, "image object not deleted", "key", asset.StorageKey, "error", err)
	}
	return nil
}
