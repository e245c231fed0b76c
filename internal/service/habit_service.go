package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mraihanshinichi-glitch/habitual-app/internal/logger"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/habit"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/repository"
)

// здесь происходит проверка ошибок бизнес-логики

type HabitService struct {
	repo   HabitRepository
	streak *StreakService
	now    Clock
}

func NewHabitService(repo HabitRepository, streak *StreakService, clock Clock) *HabitService {
	if clock == nil {
		clock = time.Now
	}
	return &HabitService{
		repo:   repo,
		streak: streak,
		now:    clock,
	}
}

func (s *HabitService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

func (s *HabitService) CreateHabit(ctx context.Context, title, description, category string, recurring habit.Recurring, timerDuration *int) (*habit.Habit, error) {
	if title == "" {
		return nil, NewValidationError("title", "название не может быть пустым")
	}
	if recurring == "" {
		recurring = habit.RecurringOnce
	}
	if timerDuration != nil && *timerDuration <= 0 {
		return nil, NewValidationError("timer_duration", "длительность таймера должна быть положительной")
	}

	h := &habit.Habit{
		ID:            uuid.New(),
		Title:         title,
		Description:   description,
		Category:      category,
		Status:        habit.StatusActive,
		RecurringType: recurring,
		TimerDuration: timerDuration,
		CreatedAt:     s.now(),
	}

	if err := s.repo.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("создание привычки: %w", err)
	}
	return h, nil
}

func (s *HabitService) GetHabitByID(ctx context.Context, id uuid.UUID) (*habit.Habit, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Info("Service: Привычка не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound("привычка", id.String())
		}
		return nil, fmt.Errorf("получение привычки: %w", err)
	}
	return h, nil
}

func (s *HabitService) UpdateHabit(ctx context.Context, id uuid.UUID, options ...habit.HabitOption) (*habit.Habit, error) {
	h, err := s.GetHabitByID(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}

	if err := s.repo.Update(ctx, h); err != nil {
		return nil, fmt.Errorf("обновление привычки: %w", err)
	}
	return h, nil
}

// ToggleComplete переключает active <-> completed. Переход в completed
// ставит отметку времени и засчитывает день в стрик.
func (s *HabitService) ToggleComplete(ctx context.Context, id uuid.UUID) (*habit.Habit, error) {
	h, err := s.GetHabitByID(ctx, id)
	if err != nil {
		return nil, err
	}

	completed := false
	if h.Status == habit.StatusCompleted {
		h.Status = habit.StatusActive
		h.CompletedAt = nil
	} else {
		h.Status = habit.StatusCompleted
		now := s.now()
		h.CompletedAt = &now
		completed = true
	}

	if err := s.repo.Update(ctx, h); err != nil {
		return nil, fmt.Errorf("обновление привычки: %w", err)
	}

	if completed {
		if err := s.streak.RecordCompletion(ctx); err != nil {
			logger.Warn("Service: Не удалось обновить стрик", zap.Error(err))
		}
	}
	return h, nil
}

func (s *HabitService) ArchiveHabit(ctx context.Context, id uuid.UUID) (*habit.Habit, error) {
	return s.setStatus(ctx, id, habit.StatusArchived)
}

func (s *HabitService) UnarchiveHabit(ctx context.Context, id uuid.UUID) (*habit.Habit, error) {
	return s.setStatus(ctx, id, habit.StatusActive)
}

// архивация и разархивация не трогают completed_at
func (s *HabitService) setStatus(ctx context.Context, id uuid.UUID, status habit.Status) (*habit.Habit, error) {
	h, err := s.GetHabitByID(ctx, id)
	if err != nil {
		return nil, err
	}

	h.Status = status
	if err := s.repo.Update(ctx, h); err != nil {
		return nil, fmt.Errorf("обновление привычки: %w", err)
	}
	return h, nil
}

func (s *HabitService) DeleteHabit(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("привычка", id.String())
		}
		return fmt.Errorf("удаление привычки: %w", err)
	}
	return nil
}

func (s *HabitService) StartTimer(ctx context.Context, id uuid.UUID) (*habit.Habit, error) {
	h, err := s.GetHabitByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !h.HasTimer() {
		return nil, NewTimerNotConfigured(id.String())
	}

	now := s.now()
	h.TimerStartedAt = &now
	if err := s.repo.Update(ctx, h); err != nil {
		return nil, fmt.Errorf("запуск таймера: %w", err)
	}
	return h, nil
}

// StopTimer сбрасывает запущенный отсчёт. При completed=true дополнительно
// выполняется тот же переход в completed, что и в ToggleComplete.
func (s *HabitService) StopTimer(ctx context.Context, id uuid.UUID, completed bool) (*habit.Habit, error) {
	h, err := s.GetHabitByID(ctx, id)
	if err != nil {
		return nil, err
	}

	h.TimerStartedAt = nil
	if completed {
		h.Status = habit.StatusCompleted
		now := s.now()
		h.CompletedAt = &now
	}

	if err := s.repo.Update(ctx, h); err != nil {
		return nil, fmt.Errorf("остановка таймера: %w", err)
	}

	if completed {
		if err := s.streak.RecordCompletion(ctx); err != nil {
			logger.Warn("Service: Не удалось обновить стрик", zap.Error(err))
		}
	}
	return h, nil
}

// ListActive возвращает все привычки кроме архивных, новые первыми
func (s *HabitService) ListActive(ctx context.Context) ([]*habit.Habit, error) {
	return s.list(ctx, func(h *habit.Habit) bool { return h.Status != habit.StatusArchived })
}

func (s *HabitService) ListArchived(ctx context.Context) ([]*habit.Habit, error) {
	return s.list(ctx, func(h *habit.Habit) bool { return h.Status == habit.StatusArchived })
}

func (s *HabitService) ListAll(ctx context.Context) ([]*habit.Habit, error) {
	return s.list(ctx, func(h *habit.Habit) bool { return true })
}

func (s *HabitService) list(ctx context.Context, keep func(*habit.Habit) bool) ([]*habit.Habit, error) {
	habits, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение привычек: %w", err)
	}

	res := []*habit.Habit{}
	for _, h := range habits {
		if keep(h) {
			res = append(res, h)
		}
	}
	return res, nil
}

// TodayProgress - процент выполненных среди неархивных, 0..100.
// Если неархивных нет - 0, деления на ноль не происходит.
func (s *HabitService) TodayProgress(ctx context.Context) (int, error) {
	habits, err := s.repo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("получение привычек: %w", err)
	}

	total := 0
	completed := 0
	for _, h := range habits {
		if h.Status == habit.StatusArchived {
			continue
		}
		total++
		if h.Status == habit.StatusCompleted {
			completed++
		}
	}

	if total == 0 {
		return 0, nil
	}
	return int(math.Round(float64(completed) / float64(total) * 100)), nil
}

// ResetRecurring возвращает выполненные повторяющиеся привычки в active,
// когда их период истёк. Сравниваются календарные даты, а не прошедшая
// длительность: ежедневная сбрасывается на границе местной полуночи,
// еженедельная - только в понедельник.
func (s *HabitService) ResetRecurring(ctx context.Context) (int, error) {
	habits, err := s.repo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("получение привычек: %w", err)
	}

	now := s.now()
	today := now.Format(time.DateOnly)
	resetCount := 0

	for _, h := range habits {
		if h.Status != habit.StatusCompleted || h.CompletedAt == nil {
			continue
		}

		completedDay := h.CompletedAt.Format(time.DateOnly)

		needReset := false
		switch h.RecurringType {
		case habit.RecurringDaily:
			needReset = completedDay != today
		case habit.RecurringWeekly:
			needReset = now.Weekday() == time.Monday && completedDay != today
		}

		if !needReset {
			continue
		}

		h.Status = habit.StatusActive
		h.CompletedAt = nil
		if err := s.repo.Update(ctx, h); err != nil {
			logger.Warn("Service: Ошибка сброса привычки",
				zap.String("habit_id", h.ID.String()),
				zap.Error(err))
			continue
		}
		resetCount++
	}

	if resetCount > 0 {
		logger.Info("Service: Повторяющиеся привычки сброшены", zap.Int("reset", resetCount))
	}
	return resetCount, nil
}

type CategoryStat struct {
	Category   string `json:"category"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// CategoryStats - распределение выполнений по категориям за последние periodDays дней
func (s *HabitService) CategoryStats(ctx context.Context, periodDays int) ([]CategoryStat, error) {
	if periodDays <= 0 {
		periodDays = 30
	}

	habits, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение привычек: %w", err)
	}

	cutoff := s.now().AddDate(0, 0, -periodDays)

	counts := map[string]int{}
	total := 0
	for _, h := range habits {
		if h.Status != habit.StatusCompleted || h.CompletedAt == nil {
			continue
		}
		if h.CompletedAt.Before(cutoff) {
			continue
		}
		counts[h.Category]++
		total++
	}

	stats := []CategoryStat{}
	for category, count := range counts {
		stats = append(stats, CategoryStat{
			Category:   category,
			Count:      count,
			Percentage: int(math.Round(float64(count) / float64(total) * 100)),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Category < stats[j].Category
	})
	return stats, nil
}
