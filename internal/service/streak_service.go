package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mraihanshinichi-glitch/habitual-app/internal/logger"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/streak"
)

// StreakService ведёт единственный стрик пользователя: подряд идущие
// календарные дни, в каждом из которых было хотя бы одно выполнение.

type StreakService struct {
	repo StreakRepository
	now  Clock
}

func NewStreakService(repo StreakRepository, clock Clock) *StreakService {
	if clock == nil {
		clock = time.Now
	}
	return &StreakService{
		repo: repo,
		now:  clock,
	}
}

func (s *StreakService) GetStreak(ctx context.Context) (streak.Data, error) {
	data, err := s.repo.GetStreak(ctx)
	if err != nil {
		return streak.Data{}, fmt.Errorf("получение стрика: %w", err)
	}
	return data, nil
}

// RecordCompletion засчитывает выполнение за сегодняшний день.
// Повторный вызов в тот же день ничего не меняет; пропуск дня
// обнаруживается лениво - при следующем выполнении стрик начинается с 1.
func (s *StreakService) RecordCompletion(ctx context.Context) error {
	data, err := s.repo.GetStreak(ctx)
	if err != nil {
		return fmt.Errorf("получение стрика: %w", err)
	}

	now := s.now()
	today := now.Format(time.DateOnly)
	if data.LastCompletedDate == today {
		return nil
	}

	yesterday := now.AddDate(0, 0, -1).Format(time.DateOnly)

	newStreak := 1
	if data.LastCompletedDate == yesterday {
		newStreak = data.CurrentStreak + 1
	}

	data.CurrentStreak = newStreak
	data.LastCompletedDate = today
	if newStreak > data.LongestStreak {
		data.LongestStreak = newStreak
	}

	if err := s.repo.UpsertStreak(ctx, data); err != nil {
		return fmt.Errorf("сохранение стрика: %w", err)
	}

	logger.Info("Service: Стрик обновлён",
		zap.Int("current", data.CurrentStreak),
		zap.Int("longest", data.LongestStreak),
		zap.String("date", today))
	return nil
}
