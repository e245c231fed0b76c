package habit

type HabitOption func(*Habit)

// опции обновления: применяются только переданные поля

func WithTitle(title string) HabitOption {
	if title == "" {
		return nil
	}
	return func(h *Habit) {
		h.Title = title
	}
}

func WithDescription(description *string) HabitOption {
	if description == nil {
		return nil
	}
	return func(h *Habit) {
		h.Description = *description
	}
}

func WithCategory(category string) HabitOption {
	if category == "" {
		return nil
	}
	return func(h *Habit) {
		h.Category = category
	}
}

func WithRecurring(recurring Recurring) HabitOption {
	if recurring != RecurringOnce && recurring != RecurringDaily && recurring != RecurringWeekly {
		return nil
	}
	return func(h *Habit) {
		h.RecurringType = recurring
	}
}

// nil duration убирает таймер, вместе с ним сбрасывается и запущенный отсчёт
func WithTimerDuration(minutes *int) HabitOption {
	if minutes != nil && *minutes <= 0 {
		return nil
	}
	return func(h *Habit) {
		h.TimerDuration = minutes
		if h.TimerDuration == nil {
			h.TimerStartedAt = nil
		}
	}
}
