package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	"github.com/dmitrijs2005/repoboard/internal/server/events"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
)

const maxPinLabelLength = 80

// MapService keeps one pin per user on each map widget.
type MapService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   Publisher
	logger      logging.Logger
}

func NewMapService(db *sql.DB, m repomanager.RepositoryManager, pub Publisher, logger logging.Logger) *MapService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &MapService{db: db, repomanager: m, publisher: pub, logger: logger.With("module", "map")}
}

// SetPin places or moves userID's pin.
func (s *MapService) SetPin(ctx context.Context, userID, widgetID string, lat, lng float64, label string) (*models.MapPin, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	label = strings.TrimSpace(label)
	verr := &common.ValidationError{}
	if lat < -90 || lat > 90 {
		verr.Add("lat", "must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		verr.Add("lng", "must be between -180 and 180")
	}
	if len(label) > maxPinLabelLength {
		verr.Add("label", "is too long")
	}
	if !verr.Empty() {
		return nil, verr
	}

	w, err := widgetOfType(ctx, s.repomanager, s.db, widgetID, widgets.TypeMap)
	if err != nil {
		return nil, err
	}
	author, err := authorName(ctx, s.repomanager, s.db, userID)
	if err != nil {
		return nil, err
	}

	p := &models.MapPin{WidgetID: widgetID, UserID: userID, Author: author, Lat: lat, Lng: lng, Label: label}
	if err := s.repomanager.Pins(s.db).Upsert(ctx, p); err != nil {
		return nil, err
	}
	s.publisher.Publish(events.Event{BoardID: w.BoardID, WidgetID: widgetID, Kind: events.FeatureChanged})
	return p, nil
}

func (s *MapService) ListPins(ctx context.Context, widgetID string) ([]*models.MapPin, error) {
	if _, err := widgetOfType(ctx, s.repomanager, s.db, widgetID, widgets.TypeMap); err != nil {
		return nil, err
	}
	return s.repomanager.Pins(s.db).List(ctx, widgetID)
}

// RemovePin deletes userID's own pin.
func (s *MapService) RemovePin(ctx context.Context, userID, widgetID string) error {
	if userID == "" {
		return common.ErrorUnauthorized
	}
	w, err := widgetOfType(ctx, s.repomanager, s.db, widgetID, widgets.TypeMap)
	if err != nil {
		return err
	}
	if err := s.repomanager.Pins(s.db).Delete(ctx, widgetID, userID); err != nil {
		return err
	}
	s.publisher.Publish(events.Event{BoardID: w.BoardID, WidgetID: widgetID, Kind: events.FeatureChanged})
	return nil
}

// DeletePinsHook removes pins of a deleted map.
func (s *MapService) DeletePinsHook(ctx context.Context, w *models.Widget) error {
	_, err := s.repomanager.Pins(s.db).DeleteByWidget(ctx, w.ID)
	return err
}
