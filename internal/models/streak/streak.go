package streak

// Data - единственная запись стрика на пользователя
type Data struct {
	CurrentStreak int `json:"current_streak" db:"current_streak"`
	LongestStreak int `json:"longest_streak" db:"longest_streak"`
	// календарная дата последнего зачтённого выполнения, формат YYYY-MM-DD,
	// пустая строка - выполнений ещё не было
	LastCompletedDate string `json:"last_completed_date,omitempty" db:"last_completed_date"`
}
