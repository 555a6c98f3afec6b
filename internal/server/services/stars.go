package services

import (
	"context"

	"github.com/dmitrijs2005/repoboard/internal/server/github"
)

type StarsService struct {
	github GitHub
}

func NewStarsService(gh GitHub) *StarsService {
	return &StarsService{github: gh}
}

// Count returns the stargazer count of repo, served from the GitHub cache
// when fresh.
func (s *StarsService) Count(ctx context.Context, repo string) (int, error) {
	if _, _, err := github.SplitRepo(repo); err != nil {
		return 0, err
	}
	return s.github.StarCount(ctx, repo)
}
