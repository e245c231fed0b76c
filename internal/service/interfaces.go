package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/habit"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/mood"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/streak"
)

type HabitRepository interface {
	Create(context.Context, *habit.Habit) error
	Update(context.Context, *habit.Habit) error
	GetByID(context.Context, uuid.UUID) (*habit.Habit, error)
	GetAll(context.Context) ([]*habit.Habit, error)
	Delete(context.Context, uuid.UUID) error
	HealthCheck(context.Context) error
}

type StreakRepository interface {
	GetStreak(context.Context) (streak.Data, error)
	UpsertStreak(context.Context, streak.Data) error
}

type SettingsRepository interface {
	GetTheme(context.Context) (string, error)
	SetTheme(context.Context, string) error
	ListCategories(context.Context) ([]string, error)
	AddCategory(context.Context, string) error
	RemoveCategory(context.Context, string) error
}

type MoodRepository interface {
	GetMood(ctx context.Context, day string) (*mood.Entry, error)
	SaveMood(context.Context, mood.Entry) error
}

// Clock - источник текущего времени, в тестах подменяется
type Clock func() time.Time
