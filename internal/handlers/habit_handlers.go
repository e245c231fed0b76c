package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mraihanshinichi-glitch/habitual-app/internal/handlers/dto"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/logger"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/habit"
)

type HabitHandler struct {
	Habits   HabitService
	Streaks  StreakService
	Settings SettingsService
}

func NewHabitHandler(habits HabitService, streaks StreakService, settings SettingsService) HabitHandler {
	return HabitHandler{
		Habits:   habits,
		Streaks:  streaks,
		Settings: settings,
	}
}

func (s *HabitHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := s.Habits.HealthCheck(r.Context()); err != nil {
		responseWithError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	healthCheck(w)
}

// parseId достаёт и проверяет {id} из пути
func parseId(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "не удалось получить id:"+err.Error())
		return uuid.Nil, false
	}

	if id == uuid.Nil {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("error", "nil id"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "id не может быть пустым")
		return uuid.Nil, false
	}
	return id, true
}

func (s *HabitHandler) GetActiveHabits(w http.ResponseWriter, r *http.Request) {
	s.listHabits(w, r, s.Habits.ListActive)
}

func (s *HabitHandler) GetArchivedHabits(w http.ResponseWriter, r *http.Request) {
	s.listHabits(w, r, s.Habits.ListArchived)
}

func (s *HabitHandler) GetAllHabits(w http.ResponseWriter, r *http.Request) {
	s.listHabits(w, r, s.Habits.ListAll)
}

func (s *HabitHandler) listHabits(w http.ResponseWriter, r *http.Request, list func(context.Context) ([]*habit.Habit, error)) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	habits, err := list(r.Context())
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Привычки получены",
		zap.Int("count", len(habits)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromHabitList(habits))
}

func (s *HabitHandler) PostHabit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса:"+err.Error())
		return
	}

	if request.Title == "" {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "title"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "название не может быть пустым")
		return
	}

	h, err := s.Habits.CreateHabit(r.Context(), request.Title, request.Description,
		request.Category, habit.Recurring(request.RecurringType), request.TimerDuration)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "create_habit"),
			zap.Duration("ms", time.Since(start)))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Привычка создана",
		zap.String("habit_id", h.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, dto.FromHabit(h))
}

func (s *HabitHandler) GetHabitByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseId(w, r)
	if !ok {
		return
	}

	h, err := s.Habits.GetHabitByID(r.Context(), id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка в Service", err,
			zap.String("operation", "get_habit"))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Привычка получена",
		zap.String("habit_id", h.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromHabit(h))
}

func (s *HabitHandler) UpdateHabitByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseId(w, r)
	if !ok {
		return
	}

	var request dto.UpdateHabitRequest
	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления:"+err.Error())
		return
	}

	options := []habit.HabitOption{
		habit.WithTimerDuration(request.TimerDuration),
	}
	if request.Title != nil {
		options = append(options, habit.WithTitle(*request.Title))
	}
	options = append(options, habit.WithDescription(request.Description))
	if request.Category != nil {
		options = append(options, habit.WithCategory(*request.Category))
	}
	if request.RecurringType != nil {
		options = append(options, habit.WithRecurring(habit.Recurring(*request.RecurringType)))
	}

	h, err := s.Habits.UpdateHabit(r.Context(), id, options...)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "update_habit"))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Привычка обновлена",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromHabit(h))
}

func (s *HabitHandler) DeleteHabitByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseId(w, r)
	if !ok {
		return
	}

	if err := s.Habits.DeleteHabit(r.Context(), id); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "delete_habit"))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Привычка удалена",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	responseWithJSON(w, http.StatusNoContent, nil)
}

func (s *HabitHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	s.mutateHabit(w, r, "toggle_complete", s.Habits.ToggleComplete)
}

func (s *HabitHandler) ArchiveHabit(w http.ResponseWriter, r *http.Request) {
	s.mutateHabit(w, r, "archive_habit", s.Habits.ArchiveHabit)
}

func (s *HabitHandler) UnarchiveHabit(w http.ResponseWriter, r *http.Request) {
	s.mutateHabit(w, r, "unarchive_habit", s.Habits.UnarchiveHabit)
}

func (s *HabitHandler) StartTimer(w http.ResponseWriter, r *http.Request) {
	s.mutateHabit(w, r, "start_timer", s.Habits.StartTimer)
}

func (s *HabitHandler) mutateHabit(w http.ResponseWriter, r *http.Request, operation string, mutate func(context.Context, uuid.UUID) (*habit.Habit, error)) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseId(w, r)
	if !ok {
		return
	}

	h, err := mutate(r.Context(), id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", operation))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Привычка обновлена",
		zap.String("habit_id", h.ID.String()),
		zap.String("operation", operation),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromHabit(h))
}

func (s *HabitHandler) StopTimer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseId(w, r)
	if !ok {
		return
	}

	var request dto.StopTimerRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&request)
		r.Body.Close()
	}

	h, err := s.Habits.StopTimer(r.Context(), id, request.Completed)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "stop_timer"))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Таймер остановлен",
		zap.String("habit_id", h.ID.String()),
		zap.Bool("completed", request.Completed),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromHabit(h))
}

// ResetRecurring дергается фронтендом при открытии дашборда
func (s *HabitHandler) ResetRecurring(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	reset, err := s.Habits.ResetRecurring(r.Context())
	if err != nil {
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "reset_recurring"))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Сброс повторяющихся привычек выполнен",
		zap.Int("reset", reset),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, map[string]any{"reset": reset})
}

func (s *HabitHandler) GetTodayProgress(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	progress, err := s.Habits.TodayProgress(r.Context())
	if err != nil {
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "today_progress"))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, map[string]any{"progress": progress})
}

func (s *HabitHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	data, err := s.Streaks.GetStreak(r.Context())
	if err != nil {
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "get_streak"))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, data)
}
