package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/mood"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/repository"
)

// DefaultCategories - фиксированные категории, всегда идут первыми
var DefaultCategories = []string{"Спорт", "Работа", "Учёба", "Здоровье", "Другое"}

const ThemeLight = "light"
const ThemeDark = "dark"

type SettingsService struct {
	repo  SettingsRepository
	moods MoodRepository
	now   Clock
}

func NewSettingsService(repo SettingsRepository, moods MoodRepository, clock Clock) *SettingsService {
	if clock == nil {
		clock = time.Now
	}
	return &SettingsService{
		repo:  repo,
		moods: moods,
		now:   clock,
	}
}

// AllCategories - дефолтные плюс пользовательские, в этом порядке
func (s *SettingsService) AllCategories(ctx context.Context) ([]string, error) {
	customs, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение категорий: %w", err)
	}

	all := make([]string, 0, len(DefaultCategories)+len(customs))
	all = append(all, DefaultCategories...)
	all = append(all, customs...)
	return all, nil
}

// AddCategory добавляет пользовательскую категорию. Пустое после trim имя
// и уже существующее (с учётом регистра) - no-op.
func (s *SettingsService) AddCategory(ctx context.Context, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil
	}

	all, err := s.AllCategories(ctx)
	if err != nil {
		return err
	}
	for _, existing := range all {
		if existing == trimmed {
			return nil
		}
	}

	if err := s.repo.AddCategory(ctx, trimmed); err != nil {
		return fmt.Errorf("добавление категории: %w", err)
	}
	return nil
}

// RemoveCategory удаляет только пользовательскую категорию; дефолтные и
// неизвестные имена игнорируются. Привычки с удалённой категорией
// сохраняют её строку как есть.
func (s *SettingsService) RemoveCategory(ctx context.Context, name string) error {
	for _, def := range DefaultCategories {
		if def == name {
			return nil
		}
	}

	if err := s.repo.RemoveCategory(ctx, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("удаление категории: %w", err)
	}
	return nil
}

func (s *SettingsService) GetTheme(ctx context.Context) (string, error) {
	theme, err := s.repo.GetTheme(ctx)
	if err != nil {
		return "", fmt.Errorf("получение темы: %w", err)
	}
	if theme == "" {
		theme = ThemeDark
	}
	return theme, nil
}

func (s *SettingsService) SetTheme(ctx context.Context, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return NewValidationError("theme", "допустимы только light и dark")
	}
	if err := s.repo.SetTheme(ctx, theme); err != nil {
		return fmt.Errorf("сохранение темы: %w", err)
	}
	return nil
}

func (s *SettingsService) ToggleTheme(ctx context.Context) (string, error) {
	current, err := s.GetTheme(ctx)
	if err != nil {
		return "", err
	}

	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	if err := s.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}

// TodayMood возвращает запись настроения за сегодня, nil если её ещё нет
func (s *SettingsService) TodayMood(ctx context.Context) (*mood.Entry, error) {
	day := s.now().Format(time.DateOnly)
	entry, err := s.moods.GetMood(ctx, day)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("получение настроения: %w", err)
	}
	return entry, nil
}

// RecordMood сохраняет настроение за сегодня, повторная запись перезаписывает день
func (s *SettingsService) RecordMood(ctx context.Context, m mood.Mood, note string) (*mood.Entry, error) {
	if !m.Valid() {
		return nil, NewValidationError("mood", "неизвестное значение настроения")
	}

	entry := mood.Entry{
		Day:  s.now().Format(time.DateOnly),
		Mood: m,
		Note: note,
	}
	if err := s.moods.SaveMood(ctx, entry); err != nil {
		return nil, fmt.Errorf("сохранение настроения: %w", err)
	}
	return &entry, nil
}
