package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/mraihanshinichi-glitch/habitual-app/internal/config"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/handlers"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/logger"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/middleware"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/repository/habit/local"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/repository/habit/postgres"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/service"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/worker"
)

type App struct {
	config    *config.Config
	server    *http.Server
	worker    *worker.RecurrenceWorker
	shutdowns []func() // функции для graceful shutdown, в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	// бинарный переключатель хранилища: удалённый PostgreSQL,
	// иначе локальный файл
	var habitRepo service.HabitRepository
	var streakRepo service.StreakRepository
	var settingsRepo service.SettingsRepository
	var moodRepo service.MoodRepository

	if a.config.RemoteConfigured() {
		storage, err := postgres.New(ctx, a.config.Database.URL, a.config.Owner.ID, postgres.Config{
			MaxConns:    a.config.Database.MaxConnections,
			MinConns:    a.config.Database.MinConnections,
			IdleTimeout: a.config.Database.IdleTimeout,
		})
		if err != nil {
			return fmt.Errorf("подключение к PostgreSQL: %w", err)
		}
		if err := storage.Migrate(ctx); err != nil {
			return fmt.Errorf("миграции: %w", err)
		}
		a.shutdowns = append(a.shutdowns, storage.Close)

		habitRepo, streakRepo, settingsRepo, moodRepo = storage, storage, storage, storage
		logger.Info("App: Используется удалённое хранилище PostgreSQL")
	} else {
		store, err := local.Open(a.config.Local.Path)
		if err != nil {
			return fmt.Errorf("открытие локального хранилища: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() { store.Close() })

		habitRepo, streakRepo, settingsRepo, moodRepo = store, store, store, store
		logger.Info("App: Удалённый бэкенд не настроен, используется локальное хранилище",
			zap.String("path", a.config.Local.Path))
	}

	streakService := service.NewStreakService(streakRepo, nil)
	habitService := service.NewHabitService(habitRepo, streakService, nil)
	settingsService := service.NewSettingsService(settingsRepo, moodRepo, nil)

	handler := handlers.NewHabitHandler(habitService, streakService, settingsService)

	a.worker = worker.NewRecurrenceWorker(habitService, time.Local)
	if err := a.worker.Start(ctx, a.config.Recurrence.ResetTime); err != nil {
		return fmt.Errorf("запуск планировщика сброса: %w", err)
	}
	a.shutdowns = append(a.shutdowns, a.worker.Stop)

	a.server = &http.Server{
		Addr:    a.config.GetServerAddr(),
		Handler: a.router(&handler),
	}
	return nil
}

func (a *App) router(h *handlers.HabitHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(a.config.RateLimit.RPM))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/habits", func(r chi.Router) {
		r.Get("/", h.GetActiveHabits) // GET /habits
		r.Post("/", h.PostHabit)      // POST /habits

		r.Post("/reset-recurring", h.ResetRecurring) // POST /habits/reset-recurring

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetHabitByID)       // GET /habits/{id}
			r.Put("/", h.UpdateHabitByID)    // PUT /habits/{id}
			r.Delete("/", h.DeleteHabitByID) // DELETE /habits/{id}

			r.Post("/toggle", h.ToggleComplete)   // POST /habits/{id}/toggle
			r.Post("/archive", h.ArchiveHabit)    // POST /habits/{id}/archive
			r.Post("/unarchive", h.UnarchiveHabit) // POST /habits/{id}/unarchive

			r.Post("/timer/start", h.StartTimer) // POST /habits/{id}/timer/start
			r.Post("/timer/stop", h.StopTimer)   // POST /habits/{id}/timer/stop
		})

		r.Get("/archived", h.GetArchivedHabits) // GET /habits/archived
		r.Get("/all", h.GetAllHabits)           // GET /habits/all
	})

	r.Get("/progress/today", h.GetTodayProgress)
	r.Get("/streak", h.GetStreak)

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.GetCategories)
		r.Post("/", h.PostCategory)
		r.Get("/stats", h.GetCategoryStats)
		r.Delete("/{name}", h.DeleteCategory)
	})

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.GetSettings)
		r.Put("/theme", h.PutTheme)
		r.Post("/theme/toggle", h.ToggleTheme)
	})

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", h.GetTemplates)
		r.Post("/{id}/apply", h.ApplyTemplate)
	})

	r.Route("/mood", func(r chi.Router) {
		r.Get("/today", h.GetTodayMood)
		r.Post("/", h.PostMood)
	})

	r.Get("/health", h.HealthCheck)
	return r
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("работа сервера: %w", err)
	case <-ctx.Done():
	}

	logger.Info("App: Получен сигнал завершения, останавливаемся...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: Ошибка остановки сервера", err)
	}

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	return nil
}
