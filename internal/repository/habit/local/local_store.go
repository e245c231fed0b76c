package local

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mraihanshinichi-glitch/habitual-app/internal/logger"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/habit"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/mood"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/streak"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/repository"
)

// Локальное хранилище-fallback: один файл SQLite с таблицей ключ-значение,
// по слоту JSON на каждый логический стор. Всё состояние держится в памяти
// под мьютексом, слот перезаписывается целиком при каждой мутации.

//go:embed schema.sql
var schemaSQL string

const slotHabits = "habits"
const slotStreak = "streak"
const slotSettings = "settings"
const slotMoods = "moods"

type settingsSlot struct {
	Theme            string   `json:"theme"`
	CustomCategories []string `json:"custom_categories"`
}

type Store struct {
	db *sql.DB

	mtx      sync.RWMutex
	habits   map[uuid.UUID]*habit.Habit
	order    []uuid.UUID // порядок вставки, новые в начале
	streak   streak.Data
	settings settingsSlot
	moods    map[string]mood.Entry
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("не задан путь к локальному хранилищу")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("открытие локального хранилища: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("применение схемы: %w", err)
	}

	s := &Store{
		db:     db,
		habits: make(map[uuid.UUID]*habit.Habit),
		order:  []uuid.UUID{},
		moods:  make(map[string]mood.Entry),
	}
	s.load(context.Background())

	logger.Info("Repository: Локальное хранилище открыто", zap.String("path", path))
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// load читает все слоты при старте; битый JSON считается отсутствием данных
func (s *Store) load(ctx context.Context) {
	var habits []*habit.Habit
	if s.readSlot(ctx, slotHabits, &habits) {
		for _, h := range habits {
			s.habits[h.ID] = h
			s.order = append(s.order, h.ID)
		}
	}
	s.readSlot(ctx, slotStreak, &s.streak)
	s.readSlot(ctx, slotSettings, &s.settings)

	var moods []mood.Entry
	if s.readSlot(ctx, slotMoods, &moods) {
		for _, m := range moods {
			s.moods[m.Day] = m
		}
	}
}

func (s *Store) readSlot(ctx context.Context, key string, dest any) bool {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Warn("Repository: Ошибка чтения слота", zap.String("slot", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal([]byte(value), dest); err != nil {
		logger.Warn("Repository: Слот повреждён, данные считаются отсутствующими",
			zap.String("slot", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) writeSlot(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("сериализация слота %s: %w", key, err)
	}

	query := `INSERT INTO kv_store (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, query, key, string(raw)); err != nil {
		return fmt.Errorf("запись слота %s: %w", key, err)
	}
	return nil
}

// habitsSnapshot собирает слот привычек в текущем порядке; вызывать под мьютексом
func (s *Store) habitsSnapshot() []*habit.Habit {
	res := make([]*habit.Habit, 0, len(s.order))
	for _, id := range s.order {
		res = append(res, s.habits[id])
	}
	return res
}

func (s *Store) Create(ctx context.Context, h *habit.Habit) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.habits[h.ID] = h
	// новая привычка встаёт первой
	s.order = append([]uuid.UUID{h.ID}, s.order...)

	return s.writeSlot(ctx, slotHabits, s.habitsSnapshot())
}

func (s *Store) Update(ctx context.Context, h *habit.Habit) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.habits[h.ID]; !ok {
		return repository.ErrNotFound
	}

	now := time.Now()
	h.UpdatedAt = &now
	s.habits[h.ID] = h

	return s.writeSlot(ctx, slotHabits, s.habitsSnapshot())
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*habit.Habit, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	h, ok := s.habits[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *h
	return &copied, nil
}

func (s *Store) GetAll(ctx context.Context) ([]*habit.Habit, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*habit.Habit, 0, len(s.order))
	for _, id := range s.order {
		copied := *s.habits[id]
		res = append(res, &copied)
	}
	return res, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.habits[id]; !ok {
		return repository.ErrNotFound
	}

	delete(s.habits, id)
	for ind, val := range s.order {
		if val == id {
			s.order = append(s.order[:ind], s.order[ind+1:]...)
			break
		}
	}

	return s.writeSlot(ctx, slotHabits, s.habitsSnapshot())
}

func (s *Store) GetStreak(ctx context.Context) (streak.Data, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.streak, nil
}

func (s *Store) UpsertStreak(ctx context.Context, data streak.Data) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.streak = data
	return s.writeSlot(ctx, slotStreak, s.streak)
}

func (s *Store) GetTheme(ctx context.Context) (string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.settings.Theme, nil
}

func (s *Store) SetTheme(ctx context.Context, theme string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.settings.Theme = theme
	return s.writeSlot(ctx, slotSettings, s.settings)
}

func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]string, len(s.settings.CustomCategories))
	copy(res, s.settings.CustomCategories)
	return res, nil
}

func (s *Store) AddCategory(ctx context.Context, name string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.settings.CustomCategories = append(s.settings.CustomCategories, name)
	return s.writeSlot(ctx, slotSettings, s.settings)
}

func (s *Store) RemoveCategory(ctx context.Context, name string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for ind, val := range s.settings.CustomCategories {
		if val == name {
			s.settings.CustomCategories = append(s.settings.CustomCategories[:ind], s.settings.CustomCategories[ind+1:]...)
			return s.writeSlot(ctx, slotSettings, s.settings)
		}
	}
	return repository.ErrNotFound
}

func (s *Store) GetMood(ctx context.Context, day string) (*mood.Entry, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	entry, ok := s.moods[day]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entry, nil
}

func (s *Store) SaveMood(ctx context.Context, entry mood.Entry) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.moods[entry.Day] = entry

	snapshot := make([]mood.Entry, 0, len(s.moods))
	for _, m := range s.moods {
		snapshot = append(snapshot, m)
	}
	return s.writeSlot(ctx, slotMoods, snapshot)
}
