package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mraihanshinichi-glitch/habitual-app/internal/logger"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/habit"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/mood"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/streak"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/repository"
)

// Удалённый бэкенд. Все строки принадлежат одному владельцу (owner_id из
// конфига): таблица привычек, singleton-строка стрика, пользовательские
// категории, настройки и записи настроения.

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Config struct {
	MaxConns    int
	MinConns    int
	IdleTimeout time.Duration
}

type Storage struct {
	pool    *pgxpool.Pool
	ownerID string
}

func New(ctx context.Context, connString, ownerID string, cfg Config) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	if cfg.MaxConns > 0 {
		config.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		config.MinConns = int32(cfg.MinConns)
	}
	if cfg.IdleTimeout > 0 {
		config.MaxConnIdleTime = cfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool, ownerID: ownerID}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Migrate(ctx context.Context) error {
	logger.Info("Repository: Применение миграций")

	for _, name := range []string{"migrations/001_init.up.sql", "migrations/002_indexes.up.sql"} {
		raw, err := migrationsFS.ReadFile(name)
		if err != nil {
			logger.Error("Repository: Не удалось прочитать миграцию", err, zap.String("file", name))
			return fmt.Errorf("чтение миграции %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(raw)); err != nil {
			logger.Error("Repository: Не удалось применить миграцию", err, zap.String("file", name))
			return fmt.Errorf("применение миграции %s: %w", name, err)
		}
	}

	logger.Info("Repository: Миграции применены")
	return nil
}

func (s *Storage) Down(ctx context.Context) error {
	logger.Info("Repository: Откат миграций")

	for _, name := range []string{"migrations/002_indexes.down.sql", "migrations/001_init.down.sql"} {
		raw, err := migrationsFS.ReadFile(name)
		if err != nil {
			logger.Error("Repository: Не удалось прочитать миграцию", err, zap.String("file", name))
			return fmt.Errorf("чтение миграции %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(raw)); err != nil {
			logger.Error("Repository: Не удалось откатить миграцию", err, zap.String("file", name))
			return fmt.Errorf("откат миграции %s: %w", name, err)
		}
	}

	return nil
}

const habitColumns = `id, title, description, category, status, recurring_type,
				timer_duration, timer_started_at, created_at, updated_at, completed_at`

func scanHabit(row pgx.Row) (*habit.Habit, error) {
	h := &habit.Habit{}
	err := row.Scan(
		&h.ID,
		&h.Title,
		&h.Description,
		&h.Category,
		&h.Status,
		&h.RecurringType,
		&h.TimerDuration,
		&h.TimerStartedAt,
		&h.CreatedAt,
		&h.UpdatedAt,
		&h.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Storage) Create(ctx context.Context, h *habit.Habit) error {
	start := time.Now()

	query := `INSERT INTO habits
				(id, owner_id, title, description, category, status, recurring_type,
				timer_duration, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		h.ID,
		s.ownerID,
		h.Title,
		h.Description,
		h.Category,
		h.Status,
		h.RecurringType,
		h.TimerDuration,
		h.CreatedAt,
	).Scan(&h.CreatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить привычку", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление привычки: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, h *habit.Habit) error {
	start := time.Now()

	query := `UPDATE habits
			SET title = $1,
				description = $2,
				category = $3,
				status = $4,
				recurring_type = $5,
				timer_duration = $6,
				timer_started_at = $7,
				completed_at = $8,
				updated_at = NOW()
			WHERE id = $9 AND owner_id = $10
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query,
		h.Title,
		h.Description,
		h.Category,
		h.Status,
		h.RecurringType,
		h.TimerDuration,
		h.TimerStartedAt,
		h.CompletedAt,
		h.ID,
		s.ownerID,
	).Scan(&h.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить привычку", err)
		return fmt.Errorf("обновление привычки: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*habit.Habit, error) {
	start := time.Now()

	query := `SELECT ` + habitColumns + `
				FROM habits
				WHERE id = $1 AND owner_id = $2`

	h, err := scanHabit(s.pool.QueryRow(ctx, query, id, s.ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить привычку", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение привычки: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return h, nil
}

// все привычки владельца, новые первыми
func (s *Storage) GetAll(ctx context.Context) ([]*habit.Habit, error) {
	start := time.Now()

	query := `SELECT ` + habitColumns + `
				FROM habits
				WHERE owner_id = $1
				ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, s.ownerID)
	if err != nil {
		logger.Error("Repository: Не удалось получить привычки", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение привычек: %w", err)
	}
	defer rows.Close()

	habits := []*habit.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования привычки", zap.Error(err))
			continue
		}
		habits = append(habits, h)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return habits, nil
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	query := `DELETE FROM habits
				WHERE id = $1 AND owner_id = $2`

	tag, err := s.pool.Exec(ctx, query, id, s.ownerID)
	if err != nil {
		logger.Error("Repository: Не удалось удалить привычку", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление привычки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetStreak(ctx context.Context) (streak.Data, error) {
	query := `SELECT current_streak, longest_streak, last_completed_date
				FROM streaks
				WHERE owner_id = $1`

	var data streak.Data
	var lastDate *time.Time
	err := s.pool.QueryRow(ctx, query, s.ownerID).Scan(&data.CurrentStreak, &data.LongestStreak, &lastDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// стрик создаётся лениво, до первого выполнения его нет
			return streak.Data{}, nil
		}
		logger.Error("Repository: Не удалось получить стрик", err)
		return streak.Data{}, fmt.Errorf("получение стрика: %w", err)
	}

	if lastDate != nil {
		data.LastCompletedDate = lastDate.Format(time.DateOnly)
	}
	return data, nil
}

func (s *Storage) UpsertStreak(ctx context.Context, data streak.Data) error {
	query := `INSERT INTO streaks (owner_id, current_streak, longest_streak, last_completed_date)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (owner_id) DO UPDATE
				SET current_streak = excluded.current_streak,
					longest_streak = excluded.longest_streak,
					last_completed_date = excluded.last_completed_date`

	var lastDate *string
	if data.LastCompletedDate != "" {
		lastDate = &data.LastCompletedDate
	}

	if _, err := s.pool.Exec(ctx, query, s.ownerID, data.CurrentStreak, data.LongestStreak, lastDate); err != nil {
		logger.Error("Repository: Не удалось сохранить стрик", err)
		return fmt.Errorf("сохранение стрика: %w", err)
	}
	return nil
}

func (s *Storage) GetTheme(ctx context.Context) (string, error) {
	query := `SELECT theme FROM user_settings WHERE owner_id = $1`

	var theme string
	err := s.pool.QueryRow(ctx, query, s.ownerID).Scan(&theme)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		logger.Error("Repository: Не удалось получить тему", err)
		return "", fmt.Errorf("получение темы: %w", err)
	}
	return theme, nil
}

func (s *Storage) SetTheme(ctx context.Context, theme string) error {
	query := `INSERT INTO user_settings (owner_id, theme, updated_at)
				VALUES ($1, $2, NOW())
				ON CONFLICT (owner_id) DO UPDATE
				SET theme = excluded.theme, updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, s.ownerID, theme); err != nil {
		logger.Error("Repository: Не удалось сохранить тему", err)
		return fmt.Errorf("сохранение темы: %w", err)
	}
	return nil
}

func (s *Storage) ListCategories(ctx context.Context) ([]string, error) {
	query := `SELECT name FROM custom_categories
				WHERE owner_id = $1
				ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, s.ownerID)
	if err != nil {
		logger.Error("Repository: Не удалось получить категории", err)
		return nil, fmt.Errorf("получение категорий: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			logger.Warn("Repository: Ошибка сканирования категории", zap.Error(err))
			continue
		}
		categories = append(categories, name)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return categories, nil
}

func (s *Storage) AddCategory(ctx context.Context, name string) error {
	query := `INSERT INTO custom_categories (owner_id, name)
				VALUES ($1, $2)
				ON CONFLICT (owner_id, name) DO NOTHING`

	if _, err := s.pool.Exec(ctx, query, s.ownerID, name); err != nil {
		logger.Error("Repository: Не удалось добавить категорию", err)
		return fmt.Errorf("добавление категории: %w", err)
	}
	return nil
}

func (s *Storage) RemoveCategory(ctx context.Context, name string) error {
	query := `DELETE FROM custom_categories
				WHERE owner_id = $1 AND name = $2`

	tag, err := s.pool.Exec(ctx, query, s.ownerID, name)
	if err != nil {
		logger.Error("Repository: Не удалось удалить категорию", err)
		return fmt.Errorf("удаление категории: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Storage) GetMood(ctx context.Context, day string) (*mood.Entry, error) {
	query := `SELECT day, mood, note FROM moods
				WHERE owner_id = $1 AND day = $2`

	var entry mood.Entry
	var d time.Time
	err := s.pool.QueryRow(ctx, query, s.ownerID, day).Scan(&d, &entry.Mood, &entry.Note)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить настроение", err)
		return nil, fmt.Errorf("получение настроения: %w", err)
	}

	entry.Day = d.Format(time.DateOnly)
	return &entry, nil
}

func (s *Storage) SaveMood(ctx context.Context, entry mood.Entry) error {
	query := `INSERT INTO moods (owner_id, day, mood, note)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (owner_id, day) DO UPDATE
				SET mood = excluded.mood, note = excluded.note`

	if _, err := s.pool.Exec(ctx, query, s.ownerID, entry.Day, entry.Mood, entry.Note); err != nil {
		logger.Error("Repository: Не удалось сохранить настроение", err)
		return fmt.Errorf("сохранение настроения: %w", err)
	}
	return nil
}
