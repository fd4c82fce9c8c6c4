package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/dreamteller/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dreamteller/internal/common"
)

// PreferencesService exposes the client-local flags that survive restarts.
type PreferencesService struct {
	repo metadata.Repository
}

func NewPreferencesService(repo metadata.Repository) *PreferencesService {
	return &PreferencesService{repo: repo}
}

// HasSeenOnboarding is false until MarkOnboardingSeen has been called.
func (p *PreferencesService) HasSeenOnboarding(ctx context.Context) (bool, error) {
	raw, err := p.repo.Get(ctx, common.OnboardingSeenKey)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	seen, err := strconv.ParseBool(string(raw))
	if err != nil {
		return false, nil
	}
	return seen, nil
}

func (p *PreferencesService) MarkOnboardingSeen(ctx context.Context) error {
	return p.repo.Set(ctx, common.OnboardingSeenKey, []byte(strconv.FormatBool(true)))
}

// ResetOnboarding makes the onboarding show again on next start.
func (p *PreferencesService) ResetOnboarding(ctx context.Context) error {
	return p.repo.Delete(ctx, common.OnboardingSeenKey)
}
