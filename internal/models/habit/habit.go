package habit

import (
	"time"

	"github.com/google/uuid"
)

type Habit struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description" db:"description"`
	Category       string     `json:"category" db:"category"`
	Status         Status     `json:"status" db:"status"`
	RecurringType  Recurring  `json:"recurring_type" db:"recurring_type"`
	TimerDuration  *int       `json:"timer_duration,omitempty" db:"timer_duration"`
	TimerStartedAt *time.Time `json:"timer_started_at,omitempty" db:"timer_started_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty" db:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

type Status string
type Recurring string

const StatusActive Status = "active"
const StatusCompleted Status = "completed"
const StatusArchived Status = "archived"

const RecurringOnce Recurring = "once"
const RecurringDaily Recurring = "daily"
const RecurringWeekly Recurring = "weekly"

// HasTimer сообщает, настроен ли у привычки таймер
func (h *Habit) HasTimer() bool {
	return h.TimerDuration != nil && *h.TimerDuration > 0
}
