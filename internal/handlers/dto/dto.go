package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/mraihanshinichi-glitch/habitual-app/internal/models/habit"
)

type CreateHabitRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	RecurringType string `json:"recurring_type"`
	TimerDuration *int   `json:"timer_duration,omitempty"`
}

// PUT присылает полное намерение: отсутствующее поле не меняется,
// отсутствующий timer_duration убирает таймер
type UpdateHabitRequest struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	Category      *string `json:"category,omitempty"`
	RecurringType *string `json:"recurring_type,omitempty"`
	TimerDuration *int    `json:"timer_duration,omitempty"`
}

type StopTimerRequest struct {
	Completed bool `json:"completed"`
}

type AddCategoryRequest struct {
	Name string `json:"name"`
}

type ThemeRequest struct {
	Theme string `json:"theme"`
}

type MoodRequest struct {
	Mood string `json:"mood"`
	Note string `json:"note"`
}

type HabitResponse struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category"`
	Status         string     `json:"status"`
	RecurringType  string     `json:"recurring_type"`
	TimerDuration  *int       `json:"timer_duration,omitempty"`
	TimerStartedAt *time.Time `json:"timer_started_at,omitempty"`
	TimerEndsAt    *time.Time `json:"timer_ends_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

func FromHabit(h *habit.Habit) HabitResponse {
	resp := HabitResponse{
		ID:             h.ID,
		Title:          h.Title,
		Description:    h.Description,
		Category:       h.Category,
		Status:         string(h.Status),
		RecurringType:  string(h.RecurringType),
		TimerDuration:  h.TimerDuration,
		TimerStartedAt: h.TimerStartedAt,
		CreatedAt:      h.CreatedAt,
		UpdatedAt:      h.UpdatedAt,
		CompletedAt:    h.CompletedAt,
	}

	if h.TimerStartedAt != nil && h.TimerDuration != nil {
		ends := h.TimerStartedAt.Add(time.Duration(*h.TimerDuration) * time.Minute)
		resp.TimerEndsAt = &ends
	}
	return resp
}

func FromHabitList(habits []*habit.Habit) []HabitResponse {
	result := make([]HabitResponse, len(habits))
	for i, h := range habits {
		result[i] = FromHabit(h)
	}
	return result
}
