package worker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mraihanshinichi-glitch/habitual-app/internal/logger"
	"github.com/mraihanshinichi-glitch/habitual-app/internal/service"
)

// RecurrenceWorker сбрасывает выполненные повторяющиеся привычки: один раз
// при старте и дальше каждый день в настроенное местное время. Отдельно от
// него остаётся HTTP-триггер, которым фронтенд дёргает сброс при открытии
// дашборда.

type RecurrenceWorker struct {
	habits *service.HabitService
	cron   *cron.Cron
}

func NewRecurrenceWorker(habits *service.HabitService, loc *time.Location) *RecurrenceWorker {
	if loc == nil {
		loc = time.Local
	}
	return &RecurrenceWorker{
		habits: habits,
		cron:   cron.New(cron.WithLocation(loc)),
	}
}

// Start регистрирует ежедневный запуск в resetTime (HH:MM) и сразу
// выполняет первый проход.
func (w *RecurrenceWorker) Start(ctx context.Context, resetTime string) error {
	spec, err := buildDailySpec(resetTime)
	if err != nil {
		return err
	}

	if _, err := w.cron.AddFunc(spec, func() { w.run(ctx) }); err != nil {
		return fmt.Errorf("регистрация cron-задачи: %w", err)
	}

	w.run(ctx)
	w.cron.Start()

	logger.Info("Worker: Планировщик сброса запущен", zap.String("reset_time", resetTime))
	return nil
}

func (w *RecurrenceWorker) Stop() {
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	logger.Info("Worker: Планировщик сброса остановлен")
}

func (w *RecurrenceWorker) run(ctx context.Context) {
	start := time.Now()

	reset, err := w.habits.ResetRecurring(ctx)
	if err != nil {
		logger.Warn("Worker: Ошибка сброса повторяющихся привычек", zap.Error(err))
		return
	}

	logger.Info("Worker: Проверка повторяющихся привычек завершена",
		zap.Int("reset", reset),
		zap.Duration("ms", time.Since(start)))
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("неверное время %q, ожидается HH:MM", timeStr)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("неверный час в %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("неверная минута в %q", timeStr)
	}

	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
