package grpc

import (
	"github.com/dmitrijs2005/repoboard/internal/api"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
)

func toUser(u *models.User) api.User {
	return api.User{ID: u.ID, Login: u.Login, AvatarURL: u.AvatarURL}
}

func toBoard(b *models.Board) *api.Board {
	out := api.Board(*b)
	return &out
}

func toWidget(w *models.Widget) *api.Widget {
	out := api.Widget(*w)
	return &out
}

func toWidgets(ws []*models.Widget) []api.Widget {
	out := make([]api.Widget, 0, len(ws))
	for _, w := range ws {
		out = append(out, api.Widget(*w))
	}
	return out
}

func toPollResults(r *models.PollResults) *api.PollResults {
	out := api.PollResults(*r)
	return &out
}

func toPin(p *models.MapPin) api.Pin {
	return api.Pin(*p)
}
