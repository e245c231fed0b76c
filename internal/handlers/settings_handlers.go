package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mraihanshinichi-glitch/habitual-app/internal/handlers/dto"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/logger"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/mood"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/templates"
)

func (s *HabitHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	categories, err := s.Settings.AllCategories(r.Context())
	if err != nil {
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "get_categories"))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (s *HabitHandler) PostCategory(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.AddCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса:"+err.Error())
		return
	}

	// пустое и уже существующее имя - no-op, не ошибка
	if err := s.Settings.AddCategory(r.Context(), request.Name); err != nil {
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "add_category"))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	categories, err := s.Settings.AllCategories(r.Context())
	if err != nil {
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusCreated, map[string]any{"categories": categories})
}

func (s *HabitHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	name := chi.URLParam(r, "name")
	if err := s.Settings.RemoveCategory(r.Context(), name); err != nil {
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "remove_category"))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusNoContent, nil)
}

func (s *HabitHandler) GetCategoryStats(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	period := 30
	if raw := r.URL.Query().Get("period"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			logger.Warn("HTTP: Неверное значение параметра",
				zap.String("query", "period"),
				zap.String("client_ip", r.RemoteAddr))

			responseWithError(w, http.StatusBadRequest, "неверное значение period")
			return
		}
		period = parsed
	}

	stats, err := s.Habits.CategoryStats(r.Context(), period)
	if err != nil {
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "category_stats"))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, map[string]any{"period": period, "stats": stats})
}

func (s *HabitHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	theme, err := s.Settings.GetTheme(r.Context())
	if err != nil {
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, map[string]any{"theme": theme})
}

func (s *HabitHandler) PutTheme(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса:"+err.Error())
		return
	}

	if err := s.Settings.SetTheme(r.Context(), request.Theme); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, map[string]any{"theme": request.Theme})
}

func (s *HabitHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	theme, err := s.Settings.ToggleTheme(r.Context())
	if err != nil {
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, map[string]any{"theme": theme})
}

func (s *HabitHandler) GetTodayMood(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	entry, err := s.Settings.TodayMood(r.Context())
	if err != nil {
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if entry == nil {
		responseWithJSON(w, http.StatusOK, map[string]any{"mood": nil})
		return
	}
	responseWithJSON(w, http.StatusOK, map[string]any{"mood": entry})
}

func (s *HabitHandler) PostMood(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.MoodRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса:"+err.Error())
		return
	}

	entry, err := s.Settings.RecordMood(r.Context(), mood.Mood(request.Mood), request.Note)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusCreated, map[string]any{"mood": entry})
}

func (s *HabitHandler) GetTemplates(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	responseWithJSON(w, http.StatusOK, map[string]any{"templates": templates.All})
}

// ApplyTemplate создаёт все привычки шаблона разом
func (s *HabitHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	templateId := chi.URLParam(r, "id")
	tpl, ok := templates.Find(templateId)
	if !ok {
		logger.Warn("HTTP: Шаблон не найден",
			zap.String("template_id", templateId),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusNotFound, "шаблон не найден: "+templateId)
		return
	}

	created := []dto.HabitResponse{}
	for _, task := range tpl.Tasks {
		h, err := s.Habits.CreateHabit(r.Context(), task.Title, "", task.Category, task.RecurringType, nil)
		if err != nil {
			logger.Error("HTTP: ошибка в Service", err,
				zap.String("operation", "apply_template"),
				zap.String("template_id", templateId))

			responseWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		created = append(created, dto.FromHabit(h))
	}

	logger.Info("HTTP_OUT: Шаблон применён",
		zap.String("template_id", templateId),
		zap.Int("created", len(created)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, map[string]any{"habits": created})
}
