package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	"github.com/dmitrijs2005/repoboard/internal/server/events"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
	"github.com/google/uuid"
)

type PollService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   Publisher
	logger      logging.Logger
}

func NewPollService(db *sql.DB, m repomanager.RepositoryManager, pub Publisher, logger logging.Logger) *PollService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &PollService{db: db, repomanager: m, publisher: pub, logger: logger.With("module", "poll")}
}

// Vote records userID's choice. Each user votes once per poll; a second vote
// yields common.ErrorAlreadyExists.
func (s *PollService) Vote(ctx context.Context, userID, widgetID, option string) (*models.PollResults, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	w, err := widgetOfType(ctx, s.repomanager, s.db, widgetID, widgets.TypePoll)
	if err != nil {
		return nil, err
	}
	if !contains(pollOptions(w.Config), option) {
		return nil, common.NewValidationError("option", "is not one of the poll options")
	}

	v := &models.PollVote{ID: uuid.NewString(), WidgetID: widgetID, UserID: userID, Option: option}
	if err := s.repomanager.Votes(s.db).Create(ctx, v); err != nil {
		return nil, err
	}
	s.publisher.Publish(events.Event{BoardID: w.BoardID, WidgetID: widgetID, Kind: events.FeatureChanged})
	return s.results(ctx, w, userID)
}

// Results counts votes per option. Options of the current config are always
// present, with zero when nobody chose them.
func (s *PollService) Results(ctx context.Context, userID, widgetID string) (*models.PollResults, error) {
	w, err := widgetOfType(ctx, s.repomanager, s.db, widgetID, widgets.TypePoll)
	if err != nil {
		return nil, err
	}
	return s.results(ctx, w, userID)
}

func (s *PollService) results(ctx context.Context, w *models.Widget, userID string) (*models.PollResults, error) {
	repo := s.repomanager.Votes(s.db)
	counts, err := repo.Counts(ctx, w.ID)
	if err != nil {
		return nil, err
	}

	res := &models.PollResults{WidgetID: w.ID, Counts: map[string]int64{}}
	for _, o := range pollOptions(w.Config) {
		res.Counts[o] = 0
	}
	for o, n := range counts {
		res.Counts[o] = n
		res.Total += n
	}

	if userID != "" {
		v, err := repo.Find(ctx, w.ID, userID)
		switch {
		case err == nil:
			res.MyVote = v.Option
		case !errors.Is(err, common.ErrorNotFound):
			return nil, err
		}
	}
	return res, nil
}

// DeleteVotesHook removes votes of a deleted poll.
func (s *PollService) DeleteVotesHook(ctx context.Context, w *models.Widget) error {
	n, err := s.repomanager.Votes(s.db).DeleteByWidget(ctx, w.ID)
	if err != nil {
		return err
	}
	s.logger.Debug(ctx, "poll votes removed", "widget_id", w.ID, "count", n)
	return nil
}

func pollOptions(cfg map[string]any) []string {
	var out []string
	switch opts := cfg["options"].(type) {
	case []any:
		for _, o := range opts {
			if s, ok := o.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, opts...)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
