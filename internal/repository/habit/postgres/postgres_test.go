package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mraihanshinichi-glitch/habitual-app/internal/logger"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/habit"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/mood"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/streak"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/repository"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/repository/habit/postgres"
)

const testOwner = "test-owner"

// PostgresTestSuite для интеграционных тестов с PostgreSQL
type PostgresTestSuite struct {
	suite.Suite
	container  testcontainers.Container
	storage    *postgres.Storage
	ctx        context.Context
	connString string
}

// SetupSuite запускается один раз перед всеми тестами
func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()
	require.NoError(s.T(), logger.Init(true))

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb", host, port.Port())

	s.storage, err = postgres.New(s.ctx, s.connString, testOwner, postgres.Config{})
	require.NoError(s.T(), err)

	// миграции встроены в хранилище
	require.NoError(s.T(), s.storage.Migrate(s.ctx))
}

// TearDownSuite очищает после всех тестов
func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает таблицы перед каждым тестом
func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	if err != nil {
		s.T().Logf("Не удалось подключиться для очистки: %v", err)
		return
	}
	defer conn.Close(s.ctx)

	for _, table := range []string{"habits", "streaks", "custom_categories", "user_settings", "moods"} {
		if _, err := conn.Exec(s.ctx, "DELETE FROM "+table); err != nil {
			s.T().Logf("Не удалось очистить таблицу %s: %v", table, err)
		}
	}
}

// TestPostgresTestSuite запускает suite
func TestPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционные тесты в коротком режиме")
	}
	suite.Run(t, new(PostgresTestSuite))
}

func newTestHabit(title string) *habit.Habit {
	return &habit.Habit{
		ID:            uuid.New(),
		Title:         title,
		Description:   "описание",
		Category:      "Спорт",
		Status:        habit.StatusActive,
		RecurringType: habit.RecurringDaily,
		CreatedAt:     time.Now(),
	}
}

// TestStorage_Create тестирует создание привычки
func (s *PostgresTestSuite) TestStorage_Create() {
	ctx := context.Background()

	h := newTestHabit("Бег по утрам")
	require.NoError(s.T(), s.storage.Create(ctx, h))
	assert.False(s.T(), h.CreatedAt.IsZero())

	retrieved, err := s.storage.GetByID(ctx, h.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Бег по утрам", retrieved.Title)
	assert.Equal(s.T(), habit.StatusActive, retrieved.Status)
	assert.Equal(s.T(), habit.RecurringDaily, retrieved.RecurringType)
	assert.Nil(s.T(), retrieved.CompletedAt)
}

// TestStorage_GetByID_NotFound тестирует отсутствующую привычку
func (s *PostgresTestSuite) TestStorage_GetByID_NotFound() {
	ctx := context.Background()

	_, err := s.storage.GetByID(ctx, uuid.New())
	require.Error(s.T(), err)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

// TestStorage_Update тестирует обновление привычки
func (s *PostgresTestSuite) TestStorage_Update() {
	ctx := context.Background()

	h := newTestHabit("Исходное название")
	require.NoError(s.T(), s.storage.Create(ctx, h))

	now := time.Now()
	h.Title = "Новое название"
	h.Status = habit.StatusCompleted
	h.CompletedAt = &now

	require.NoError(s.T(), s.storage.Update(ctx, h))

	retrieved, err := s.storage.GetByID(ctx, h.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Новое название", retrieved.Title)
	assert.Equal(s.T(), habit.StatusCompleted, retrieved.Status)
	assert.NotNil(s.T(), retrieved.CompletedAt)
	assert.NotNil(s.T(), retrieved.UpdatedAt)

	// обновление несуществующей привычки
	missing := newTestHabit("Нет такой")
	assert.ErrorIs(s.T(), s.storage.Update(ctx, missing), repository.ErrNotFound)
}

// TestStorage_Update_Timer тестирует сохранение полей таймера
func (s *PostgresTestSuite) TestStorage_Update_Timer() {
	ctx := context.Background()

	minutes := 25
	h := newTestHabit("Помодоро")
	h.TimerDuration = &minutes
	require.NoError(s.T(), s.storage.Create(ctx, h))

	started := time.Now()
	h.TimerStartedAt = &started
	require.NoError(s.T(), s.storage.Update(ctx, h))

	retrieved, err := s.storage.GetByID(ctx, h.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), retrieved.TimerDuration)
	assert.Equal(s.T(), 25, *retrieved.TimerDuration)
	assert.NotNil(s.T(), retrieved.TimerStartedAt)

	// сброс таймера
	h.TimerStartedAt = nil
	require.NoError(s.T(), s.storage.Update(ctx, h))

	retrieved, err = s.storage.GetByID(ctx, h.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), retrieved.TimerStartedAt)
}

// TestStorage_GetAll тестирует выдачу всех привычек, новые первыми
func (s *PostgresTestSuite) TestStorage_GetAll() {
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		h := newTestHabit(fmt.Sprintf("Привычка %d", i))
		h.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		require.NoError(s.T(), s.storage.Create(ctx, h))
	}

	habits, err := s.storage.GetAll(ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), habits, 3)
	assert.Equal(s.T(), "Привычка 3", habits[0].Title)
	assert.Equal(s.T(), "Привычка 1", habits[2].Title)
}

// TestStorage_Delete тестирует удаление привычки
func (s *PostgresTestSuite) TestStorage_Delete() {
	ctx := context.Background()

	h := newTestHabit("На удаление")
	require.NoError(s.T(), s.storage.Create(ctx, h))

	require.NoError(s.T(), s.storage.Delete(ctx, h.ID))

	_, err := s.storage.GetByID(ctx, h.ID)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)

	// повторное удаление
	assert.ErrorIs(s.T(), s.storage.Delete(ctx, h.ID), repository.ErrNotFound)
}

// TestStorage_Streak тестирует ленивое создание и upsert стрика
func (s *PostgresTestSuite) TestStorage_Streak() {
	ctx := context.Background()

	// до первого выполнения стрик пустой, без ошибки
	data, err := s.storage.GetStreak(ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), streak.Data{}, data)

	require.NoError(s.T(), s.storage.UpsertStreak(ctx, streak.Data{
		CurrentStreak:     1,
		LongestStreak:     1,
		LastCompletedDate: "2024-01-01",
	}))

	require.NoError(s.T(), s.storage.UpsertStreak(ctx, streak.Data{
		CurrentStreak:     2,
		LongestStreak:     5,
		LastCompletedDate: "2024-01-02",
	}))

	data, err = s.storage.GetStreak(ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, data.CurrentStreak)
	assert.Equal(s.T(), 5, data.LongestStreak)
	assert.Equal(s.T(), "2024-01-02", data.LastCompletedDate)
}

// TestStorage_Theme тестирует сохранение темы
func (s *PostgresTestSuite) TestStorage_Theme() {
	ctx := context.Background()

	theme, err := s.storage.GetTheme(ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "", theme)

	require.NoError(s.T(), s.storage.SetTheme(ctx, "light"))
	require.NoError(s.T(), s.storage.SetTheme(ctx, "dark"))

	theme, err = s.storage.GetTheme(ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "dark", theme)
}

// TestStorage_Categories тестирует пользовательские категории
func (s *PostgresTestSuite) TestStorage_Categories() {
	ctx := context.Background()

	require.NoError(s.T(), s.storage.AddCategory(ctx, "Хобби"))
	require.NoError(s.T(), s.storage.AddCategory(ctx, "Музыка"))
	// дубликат не создаёт вторую строку
	require.NoError(s.T(), s.storage.AddCategory(ctx, "Хобби"))

	categories, err := s.storage.ListCategories(ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"Хобби", "Музыка"}, categories)

	require.NoError(s.T(), s.storage.RemoveCategory(ctx, "Хобби"))
	assert.ErrorIs(s.T(), s.storage.RemoveCategory(ctx, "Хобби"), repository.ErrNotFound)
}

// TestStorage_Mood тестирует перезапись настроения за день
func (s *PostgresTestSuite) TestStorage_Mood() {
	ctx := context.Background()

	_, err := s.storage.GetMood(ctx, "2024-01-01")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)

	require.NoError(s.T(), s.storage.SaveMood(ctx, mood.Entry{
		Day: "2024-01-01", Mood: mood.MoodOkay,
	}))
	require.NoError(s.T(), s.storage.SaveMood(ctx, mood.Entry{
		Day: "2024-01-01", Mood: mood.MoodGreat, Note: "отличный день",
	}))

	entry, err := s.storage.GetMood(ctx, "2024-01-01")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "2024-01-01", entry.Day)
	assert.Equal(s.T(), mood.MoodGreat, entry.Mood)
	assert.Equal(s.T(), "отличный день", entry.Note)
}

// TestStorage_HealthCheck тестирует проверку соединения
func (s *PostgresTestSuite) TestStorage_HealthCheck() {
	require.NoError(s.T(), s.storage.HealthCheck(context.Background()))
}

// Unit тест без базы данных
func TestStorage_New_InvalidConnString(t *testing.T) {
	require.NoError(t, logger.Init(true))

	ctx := context.Background()
	_, err := postgres.New(ctx, "не-строка-подключения", testOwner, postgres.Config{})
	assert.Error(t, err)
}
