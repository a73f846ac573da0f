package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/questlog/internal/error_values"
	"github.com/limbo/questlog/internal/leveling"
	"github.com/limbo/questlog/internal/repository"
	"github.com/limbo/questlog/internal/streak"
	"github.com/limbo/questlog/pkg/entity"
)

// ProgressionService keeps the gamification state. The stored row carries
// total experience and the streak; level is derived on every read so it can
// never go stale.
type ProgressionService struct {
	repo repository.ProgressionRepositoryI
}

func NewProgressionService(progressionRepo repository.ProgressionRepositoryI) *ProgressionService {
	if progressionRepo == nil {
		log.Fatal("provided nil progressionRepo")
	}
	return &ProgressionService{
		repo: progressionRepo,
	}
}

func (ps *ProgressionService) Get(ctx context.Context, uid uuid.UUID) (*entity.UserProgression, error) {
	p, err := ps.repo.GetByUserID(ctx, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrProgressionNotFound) {
			// First contact: the row appears lazily on the first award
			return &entity.UserProgression{UserID: uid}, nil
		}
		return nil, errors.New("progression repository error: " + err.Error())
	}
	level, err := leveling.LevelFromExperience(p.TotalExperience)
	if err != nil {
		return nil, err
	}
	p.Level = level
	return p, nil
}

func (ps *ProgressionService) AwardExperience(ctx context.Context, uid uuid.UUID, amount int) (*entity.UserProgression, error) {
	if amount < 0 {
		return nil, errorvalues.ErrNegativeExperience
	}
	if err := ps.repo.ApplyExperience(ctx, uid, amount); err != nil {
		return nil, errors.New("progression repository error: " + err.Error())
	}
	return ps.Get(ctx, uid)
}

func (ps *ProgressionService) RecordActivity(ctx context.Context, uid uuid.UUID, today time.Time) (*entity.UserProgression, error) {
	current, err := ps.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	next := streak.RecordActivity(streak.State{
		Count:        current.StreakCount,
		LastActivity: current.LastActivityDate,
	}, today)
	// Same-day repeat: nothing to persist
	if next.Count == current.StreakCount && current.LastActivityDate != nil && next.LastActivity.Equal(*current.LastActivityDate) {
		return current, nil
	}
	if err := ps.repo.RecordStreakActivity(ctx, uid, next.Count, *next.LastActivity); err != nil {
		return nil, errors.New("progression repository error: " + err.Error())
	}
	return ps.Get(ctx, uid)
}
