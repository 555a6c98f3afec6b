package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/dbx"
	"github.com/dmitrijs2005/repoboard/internal/geom"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	"github.com/dmitrijs2005/repoboard/internal/server/events"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
	"github.com/google/uuid"
)

const maxWidgetTitleLength = 200

type WidgetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	registry    *widgets.Registry
	access      *AccessService
	hooks       *HookRegistry
	publisher   Publisher
	logger      logging.Logger
}

func NewWidgetService(db *sql.DB, m repomanager.RepositoryManager, registry *widgets.Registry,
	access *AccessService, hooks *HookRegistry, pub Publisher, logger logging.Logger) *WidgetService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &WidgetService{
		db:          db,
		repomanager: m,
		registry:    registry,
		access:      access,
		hooks:       hooks,
		publisher:   pub,
		logger:      logger.With("module", "widgets"),
	}
}

func (s *WidgetService) Registry() *widgets.Registry {
	return s.registry
}

// CreateWidget places a new widget of type typ on the board. It starts with
// the type's default configuration and size.
func (s *WidgetService) CreateWidget(ctx context.Context, userID, boardID, typ string, pos geom.Point, title string) (*models.Widget, error) {
	def, ok := s.registry.Lookup(typ)
	if !ok {
		return nil, common.ErrorUnknownWidgetType
	}
	title = strings.TrimSpace(title)
	if len(title) > maxWidgetTitleLength {
		return nil, common.NewValidationError("title", "is too long")
	}
	if _, err := s.access.RequireBoardWrite(ctx, userID, boardID); err != nil {
		return nil, err
	}

	cfg, err := s.registry.DefaultConfig(typ)
	if err != nil {
		return nil, err
	}
	w := &models.Widget{
		ID:       uuid.NewString(),
		BoardID:  boardID,
		Type:     typ,
		Config:   cfg,
		Position: pos,
		Size:     def.Size.DefaultSize(),
		Title:    title,
	}
	if err := s.repomanager.Widgets(s.db).Create(ctx, w); err != nil {
		return nil, err
	}

	s.publisher.Publish(events.Event{BoardID: boardID, WidgetID: w.ID, Kind: events.WidgetCreated, Version: w.Version})
	return w, nil
}

func (s *WidgetService) GetWidget(ctx context.Context, id string) (*models.Widget, error) {
	return s.repomanager.Widgets(s.db).GetByID(ctx, id)
}

func (s *WidgetService) ListWidgets(ctx context.Context, boardID string) ([]*models.Widget, error) {
	return s.repomanager.Widgets(s.db).ListByBoard(ctx, boardID)
}

// PatchWidget applies a partial update. Config is validated against the
// type's schema and replaces the stored config; size is clamped to the
// type's bounds. Widgets of unregistered types keep their config.
func (s *WidgetService) PatchWidget(ctx context.Context, userID, id string, patch models.WidgetPatch) (*models.Widget, error) {
	current, err := s.repomanager.Widgets(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RequireBoardWrite(ctx, userID, current.BoardID); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return current, nil
	}

	def, known := s.registry.Lookup(current.Type)
	if patch.Config != nil {
		if !known {
			return nil, common.ErrorUnknownWidgetType
		}
		if err := s.registry.ValidateConfig(current.Type, patch.Config); err != nil {
			return nil, err
		}
	}
	if patch.Size != nil && (patch.Size.Width <= 0 || patch.Size.Height <= 0) {
		return nil, common.NewValidationError("size", "must be positive")
	}
	if patch.Title != nil && len(strings.TrimSpace(*patch.Title)) > maxWidgetTitleLength {
		return nil, common.NewValidationError("title", "is too long")
	}

	var updated *models.Widget
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Widgets(tx)
		w, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if patch.Position != nil {
			w.Position = *patch.Position
		}
		if patch.Size != nil {
			w.Size = *patch.Size
			if known {
				w.Size = def.Size.Clamp(w.Size)
			}
		}
		if patch.Config != nil {
			w.Config = patch.Config
		}
		if patch.Title != nil {
			w.Title = strings.TrimSpace(*patch.Title)
		}
		if err := repo.Update(ctx, w); err != nil {
			return err
		}
		updated = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.Event{BoardID: updated.BoardID, WidgetID: updated.ID, Kind: events.WidgetUpdated, Version: updated.Version})
	return updated, nil
}

// DeleteWidget removes the widget and then runs the post-delete hooks of
// its type. Hook failures are logged and do not fail the delete.
func (s *WidgetService) DeleteWidget(ctx context.Context, userID, id string) error {
	w, err := s.repomanager.Widgets(s.db).GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.access.RequireBoardWrite(ctx, userID, w.BoardID); err != nil {
		return err
	}
	if err := s.repomanager.Widgets(s.db).Delete(ctx, id); err != nil {
		return err
	}

	if failed := s.hooks.Run(ctx, w); failed > 0 {
		s.logger.Warn(ctx, "widget deleted with failing hooks", "widget_id", id, "failed", failed)
	}
	s.publisher.Publish(events.Event{BoardID: w.BoardID, WidgetID: id, Kind: events.WidgetDeleted})
	return nil
}
