package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/habit"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/mood"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/streak"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/service"
)

type HabitService interface {
	HealthCheck(context.Context) error
	CreateHabit(ctx context.Context, title, description, category string, recurring habit.Recurring, timerDuration *int) (*habit.Habit, error)
	GetHabitByID(context.Context, uuid.UUID) (*habit.Habit, error)
	UpdateHabit(context.Context, uuid.UUID, ...habit.HabitOption) (*habit.Habit, error)
	ToggleComplete(context.Context, uuid.UUID) (*habit.Habit, error)
	ArchiveHabit(context.Context, uuid.UUID) (*habit.Habit, error)
	UnarchiveHabit(context.Context, uuid.UUID) (*habit.Habit, error)
	DeleteHabit(context.Context, uuid.UUID) error
	StartTimer(context.Context, uuid.UUID) (*habit.Habit, error)
	StopTimer(ctx context.Context, id uuid.UUID, completed bool) (*habit.Habit, error)
	ListActive(context.Context) ([]*habit.Habit, error)
	ListArchived(context.Context) ([]*habit.Habit, error)
	ListAll(context.Context) ([]*habit.Habit, error)
	TodayProgress(context.Context) (int, error)
	ResetRecurring(context.Context) (int, error)
	CategoryStats(ctx context.Context, periodDays int) ([]service.CategoryStat, error)
}

type StreakService interface {
	GetStreak(context.Context) (streak.Data, error)
}

type SettingsService interface {
	AllCategories(context.Context) ([]string, error)
	AddCategory(context.Context, string) error
	RemoveCategory(context.Context, string) error
	GetTheme(context.Context) (string, error)
	SetTheme(context.Context, string) error
	ToggleTheme(context.Context) (string, error)
	TodayMood(context.Context) (*mood.Entry, error)
	RecordMood(ctx context.Context, m mood.Mood, note string) (*mood.Entry, error)
}
