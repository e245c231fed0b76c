package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/habit"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/repository"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/service"
)

// MockHabitRepository - мок репозитория привычек
type MockHabitRepository struct {
	mock.Mock
}

func (m *MockHabitRepository) Create(ctx context.Context, h *habit.Habit) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockHabitRepository) Update(ctx context.Context, h *habit.Habit) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockHabitRepository) GetByID(ctx context.Context, id uuid.UUID) (*habit.Habit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*habit.Habit), args.Error(1)
}

func (m *MockHabitRepository) GetAll(ctx context.Context) ([]*habit.Habit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*habit.Habit), args.Error(1)
}

func (m *MockHabitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockHabitRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ service.HabitRepository = (*MockHabitRepository)(nil)

func newHabitService(repo service.HabitRepository, streakRepo *fakeStreakRepo, day string) *service.HabitService {
	clock := fixedClock(day)
	streakSvc := service.NewStreakService(streakRepo, clock)
	return service.NewHabitService(repo, streakSvc, clock)
}

// TestHabitService_CreateHabit тестирует создание привычки
func TestHabitService_CreateHabit(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockHabitRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newHabitService(mockRepo, &fakeStreakRepo{}, "2024-01-01")

	minutes := 25
	h, err := svc.CreateHabit(ctx, "Чтение", "30 минут перед сном", "Учёба", habit.RecurringDaily, &minutes)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, h.ID)
	assert.Equal(t, habit.StatusActive, h.Status)
	assert.Equal(t, habit.RecurringDaily, h.RecurringType)
	assert.Nil(t, h.CompletedAt)
	assert.Nil(t, h.TimerStartedAt)
	assert.False(t, h.CreatedAt.IsZero())
	mockRepo.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestHabitService_CreateHabit_EmptyTitle тестирует отказ по пустому названию
func TestHabitService_CreateHabit_EmptyTitle(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockHabitRepository)

	svc := newHabitService(mockRepo, &fakeStreakRepo{}, "2024-01-01")

	_, err := svc.CreateHabit(ctx, "", "", "Спорт", habit.RecurringOnce, nil)
	require.Error(t, err)

	var businessErr *service.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, "VALIDATION_ERROR", businessErr.Code)

	// до репозитория дело не дошло
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestHabitService_CreateHabit_DefaultRecurring тестирует подстановку once
func TestHabitService_CreateHabit_DefaultRecurring(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockHabitRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newHabitService(mockRepo, &fakeStreakRepo{}, "2024-01-01")

	h, err := svc.CreateHabit(ctx, "Прогулка", "", "Здоровье", "", nil)
	require.NoError(t, err)
	assert.Equal(t, habit.RecurringOnce, h.RecurringType)
}

// TestHabitService_ToggleComplete тестирует переход active -> completed
func TestHabitService_ToggleComplete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	existing := &habit.Habit{
		ID:            id,
		Title:         "Зарядка",
		Status:        habit.StatusActive,
		RecurringType: habit.RecurringDaily,
	}

	mockRepo := new(MockHabitRepository)
	mockRepo.On("GetByID", mock.Anything, id).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	streakRepo := &fakeStreakRepo{}
	svc := newHabitService(mockRepo, streakRepo, "2024-01-01")

	h, err := svc.ToggleComplete(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, habit.StatusCompleted, h.Status)
	require.NotNil(t, h.CompletedAt)

	// выполнение засчиталось в стрик
	assert.Equal(t, 1, streakRepo.data.CurrentStreak)
	assert.Equal(t, "2024-01-01", streakRepo.data.LastCompletedDate)
}

// TestHabitService_ToggleComplete_Back тестирует возврат completed -> active
func TestHabitService_ToggleComplete_Back(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	completedAt := time.Now()
	existing := &habit.Habit{
		ID:          id,
		Title:       "Зарядка",
		Status:      habit.StatusCompleted,
		CompletedAt: &completedAt,
	}

	mockRepo := new(MockHabitRepository)
	mockRepo.On("GetByID", mock.Anything, id).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	streakRepo := &fakeStreakRepo{}
	svc := newHabitService(mockRepo, streakRepo, "2024-01-01")

	h, err := svc.ToggleComplete(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, habit.StatusActive, h.Status)
	assert.Nil(t, h.CompletedAt)

	// снятие отметки стрик не трогает
	assert.Equal(t, 0, streakRepo.data.CurrentStreak)
}

// TestHabitService_ToggleComplete_NotFound тестирует отсутствующую привычку
func TestHabitService_ToggleComplete_NotFound(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	mockRepo := new(MockHabitRepository)
	mockRepo.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound)

	svc := newHabitService(mockRepo, &fakeStreakRepo{}, "2024-01-01")

	_, err := svc.ToggleComplete(ctx, id)
	require.Error(t, err)

	var businessErr *service.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, "NOT_FOUND", businessErr.Code)
}

// TestHabitService_Archive тестирует архивацию без изменения completed_at
func TestHabitService_Archive(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	completedAt := time.Now()
	existing := &habit.Habit{
		ID:          id,
		Title:       "Старая привычка",
		Status:      habit.StatusCompleted,
		CompletedAt: &completedAt,
	}

	mockRepo := new(MockHabitRepository)
	mockRepo.On("GetByID", mock.Anything, id).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	svc := newHabitService(mockRepo, &fakeStreakRepo{}, "2024-01-01")

	h, err := svc.ArchiveHabit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, habit.StatusArchived, h.Status)
	assert.NotNil(t, h.CompletedAt)

	h, err = svc.UnarchiveHabit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, habit.StatusActive, h.Status)
}

// TestHabitService_StartTimer_NotConfigured тестирует запуск таймера без длительности
func TestHabitService_StartTimer_NotConfigured(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	existing := &habit.Habit{ID: id, Title: "Без таймера", Status: habit.StatusActive}

	mockRepo := new(MockHabitRepository)
	mockRepo.On("GetByID", mock.Anything, id).Return(existing, nil)

	svc := newHabitService(mockRepo, &fakeStreakRepo{}, "2024-01-01")

	_, err := svc.StartTimer(ctx, id)
	require.Error(t, err)

	var businessErr *service.BusinessError
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, "TIMER_NOT_CONFIGURED", businessErr.Code)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// TestHabitService_StopTimer_Completed тестирует остановку таймера с выполнением
func TestHabitService_StopTimer_Completed(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	minutes := 25
	startedAt := time.Now()
	existing := &habit.Habit{
		ID:             id,
		Title:          "Помодоро",
		Status:         habit.StatusActive,
		TimerDuration:  &minutes,
		TimerStartedAt: &startedAt,
	}

	mockRepo := new(MockHabitRepository)
	mockRepo.On("GetByID", mock.Anything, id).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	streakRepo := &fakeStreakRepo{}
	svc := newHabitService(mockRepo, streakRepo, "2024-01-01")

	h, err := svc.StopTimer(ctx, id, true)
	require.NoError(t, err)

	assert.Nil(t, h.TimerStartedAt)
	assert.Equal(t, habit.StatusCompleted, h.Status)
	require.NotNil(t, h.CompletedAt)
	assert.Equal(t, 1, streakRepo.data.CurrentStreak)
}

// TestHabitService_StopTimer_Abandoned тестирует остановку без выполнения
func TestHabitService_StopTimer_Abandoned(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	minutes := 25
	startedAt := time.Now()
	existing := &habit.Habit{
		ID:             id,
		Title:          "Помодоро",
		Status:         habit.StatusActive,
		TimerDuration:  &minutes,
		TimerStartedAt: &startedAt,
	}

	mockRepo := new(MockHabitRepository)
	mockRepo.On("GetByID", mock.Anything, id).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	streakRepo := &fakeStreakRepo{}
	svc := newHabitService(mockRepo, streakRepo, "2024-01-01")

	h, err := svc.StopTimer(ctx, id, false)
	require.NoError(t, err)

	assert.Nil(t, h.TimerStartedAt)
	assert.Equal(t, habit.StatusActive, h.Status)
	assert.Nil(t, h.CompletedAt)
	assert.Equal(t, 0, streakRepo.data.CurrentStreak)
}

// TestHabitService_UpdateHabit_ClearTimer тестирует инвариант:
// без длительности не может быть запущенного отсчёта
func TestHabitService_UpdateHabit_ClearTimer(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	minutes := 25
	startedAt := time.Now()
	existing := &habit.Habit{
		ID:             id,
		Title:          "Помодоро",
		Status:         habit.StatusActive,
		TimerDuration:  &minutes,
		TimerStartedAt: &startedAt,
	}

	mockRepo := new(MockHabitRepository)
	mockRepo.On("GetByID", mock.Anything, id).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	svc := newHabitService(mockRepo, &fakeStreakRepo{}, "2024-01-01")

	h, err := svc.UpdateHabit(ctx, id, habit.WithTimerDuration(nil))
	require.NoError(t, err)
	assert.Nil(t, h.TimerDuration)
	assert.Nil(t, h.TimerStartedAt)
}

// TestHabitService_TodayProgress тестирует процент выполнения
func TestHabitService_TodayProgress(t *testing.T) {
	tests := []struct {
		name     string
		habits   []*habit.Habit
		expected int
	}{
		{
			name:     "empty collection",
			habits:   []*habit.Habit{},
			expected: 0,
		},
		{
			name: "all archived",
			habits: []*habit.Habit{
				{Status: habit.StatusArchived},
				{Status: habit.StatusArchived},
			},
			expected: 0,
		},
		{
			name: "one of three completed, archived ignored",
			habits: []*habit.Habit{
				{Status: habit.StatusCompleted},
				{Status: habit.StatusActive},
				{Status: habit.StatusActive},
				{Status: habit.StatusArchived},
			},
			expected: 33,
		},
		{
			name: "two of three completed",
			habits: []*habit.Habit{
				{Status: habit.StatusCompleted},
				{Status: habit.StatusCompleted},
				{Status: habit.StatusActive},
			},
			expected: 67,
		},
		{
			name: "all completed",
			habits: []*habit.Habit{
				{Status: habit.StatusCompleted},
			},
			expected: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockHabitRepository)
			mockRepo.On("GetAll", mock.Anything).Return(tt.habits, nil)

			svc := newHabitService(mockRepo, &fakeStreakRepo{}, "2024-01-01")

			progress, err := svc.TodayProgress(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, progress)
			assert.GreaterOrEqual(t, progress, 0)
			assert.LessOrEqual(t, progress, 100)
		})
	}
}

func dayAt(dateStr string) *time.Time {
	parsed, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		panic(err)
	}
	parsed = parsed.Add(9 * time.Hour)
	return &parsed
}

// TestHabitService_ResetRecurring_Daily тестирует сброс ежедневной привычки
// на следующий календарный день
func TestHabitService_ResetRecurring_Daily(t *testing.T) {
	ctx := context.Background()

	completedYesterday := &habit.Habit{
		ID:            uuid.New(),
		Title:         "Вчерашняя",
		Status:        habit.StatusCompleted,
		RecurringType: habit.RecurringDaily,
		CompletedAt:   dayAt("2024-01-01"),
	}
	completedToday := &habit.Habit{
		ID:            uuid.New(),
		Title:         "Сегодняшняя",
		Status:        habit.StatusCompleted,
		RecurringType: habit.RecurringDaily,
		CompletedAt:   dayAt("2024-01-02"),
	}
	onceDone := &habit.Habit{
		ID:            uuid.New(),
		Title:         "Разовая",
		Status:        habit.StatusCompleted,
		RecurringType: habit.RecurringOnce,
		CompletedAt:   dayAt("2024-01-01"),
	}

	mockRepo := new(MockHabitRepository)
	mockRepo.On("GetAll", mock.Anything).Return([]*habit.Habit{completedYesterday, completedToday, onceDone}, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	// 2024-01-02 - вторник
	svc := newHabitService(mockRepo, &fakeStreakRepo{}, "2024-01-02")

	reset, err := svc.ResetRecurring(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, reset)

	assert.Equal(t, habit.StatusActive, completedYesterday.Status)
	assert.Nil(t, completedYesterday.CompletedAt)

	// выполненная сегодня остаётся выполненной
	assert.Equal(t, habit.StatusCompleted, completedToday.Status)
	// разовая не сбрасывается никогда
	assert.Equal(t, habit.StatusCompleted, onceDone.Status)
}

// TestHabitService_ResetRecurring_Weekly тестирует еженедельный сброс только по понедельникам
func TestHabitService_ResetRecurring_Weekly(t *testing.T) {
	ctx := context.Background()

	makeWeekly := func() *habit.Habit {
		return &habit.Habit{
			ID:            uuid.New(),
			Title:         "Еженедельная",
			Status:        habit.StatusCompleted,
			RecurringType: habit.RecurringWeekly,
			CompletedAt:   dayAt("2024-01-03"), // среда
		}
	}

	// до понедельника привычка остаётся выполненной
	for _, day := range []string{"2024-01-04", "2024-01-06", "2024-01-07"} {
		weekly := makeWeekly()
		mockRepo := new(MockHabitRepository)
		mockRepo.On("GetAll", mock.Anything).Return([]*habit.Habit{weekly}, nil)

		svc := newHabitService(mockRepo, &fakeStreakRepo{}, day)

		reset, err := svc.ResetRecurring(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, reset, "день %s", day)
		assert.Equal(t, habit.StatusCompleted, weekly.Status)
	}

	// 2024-01-08 - понедельник, привычка сбрасывается
	weekly := makeWeekly()
	mockRepo := new(MockHabitRepository)
	mockRepo.On("GetAll", mock.Anything).Return([]*habit.Habit{weekly}, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	svc := newHabitService(mockRepo, &fakeStreakRepo{}, "2024-01-08")

	reset, err := svc.ResetRecurring(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, reset)
	assert.Equal(t, habit.StatusActive, weekly.Status)
	assert.Nil(t, weekly.CompletedAt)
}

// TestHabitService_CategoryStats тестирует статистику категорий за период
func TestHabitService_CategoryStats(t *testing.T) {
	ctx := context.Background()

	habits := []*habit.Habit{
		{Status: habit.StatusCompleted, Category: "Спорт", CompletedAt: dayAt("2024-01-28")},
		{Status: habit.StatusCompleted, Category: "Спорт", CompletedAt: dayAt("2024-01-29")},
		{Status: habit.StatusCompleted, Category: "Учёба", CompletedAt: dayAt("2024-01-30")},
		// выполнена слишком давно - не попадает в окно
		{Status: habit.StatusCompleted, Category: "Работа", CompletedAt: dayAt("2023-01-01")},
		// не выполнена - не учитывается
		{Status: habit.StatusActive, Category: "Спорт"},
	}

	mockRepo := new(MockHabitRepository)
	mockRepo.On("GetAll", mock.Anything).Return(habits, nil)

	svc := newHabitService(mockRepo, &fakeStreakRepo{}, "2024-01-31")

	stats, err := svc.CategoryStats(ctx, 30)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, "Спорт", stats[0].Category)
	assert.Equal(t, 2, stats[0].Count)
	assert.Equal(t, 67, stats[0].Percentage)

	assert.Equal(t, "Учёба", stats[1].Category)
	assert.Equal(t, 1, stats[1].Count)
	assert.Equal(t, 33, stats[1].Percentage)
}
