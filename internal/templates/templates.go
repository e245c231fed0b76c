package templates

import "github.com/mraihanshinichi-glitch/habitual-app/internal/models/habit"

// Готовые наборы привычек, применяются одним действием с дашборда

type TemplateTask struct {
	Title         string          `json:"title"`
	Category      string          `json:"category"`
	RecurringType habit.Recurring `json:"recurring_type"`
}

type Template struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Tasks []TemplateTask `json:"tasks"`
}

var All = []Template{
	{
		ID:   "morning-routine",
		Name: "Утренняя рутина",
		Tasks: []TemplateTask{
			{Title: "Подъём в 6 утра", Category: "Здоровье", RecurringType: habit.RecurringDaily},
			{Title: "Выпить 2 стакана воды", Category: "Здоровье", RecurringType: habit.RecurringDaily},
			{Title: "Зарядка 15 минут", Category: "Спорт", RecurringType: habit.RecurringDaily},
			{Title: "Полезный завтрак", Category: "Здоровье", RecurringType: habit.RecurringDaily},
		},
	},
	{
		ID:   "fitness",
		Name: "Программа фитнеса",
		Tasks: []TemplateTask{
			{Title: "Кардио 30 минут", Category: "Спорт", RecurringType: habit.RecurringDaily},
			{Title: "Силовая тренировка", Category: "Спорт", RecurringType: habit.RecurringWeekly},
			{Title: "Йога/растяжка", Category: "Спорт", RecurringType: habit.RecurringDaily},
			{Title: "Учёт калорий", Category: "Здоровье", RecurringType: habit.RecurringDaily},
		},
	},
	{
		ID:   "productivity",
		Name: "Продуктивность",
		Tasks: []TemplateTask{
			{Title: "Чтение 30 минут", Category: "Учёба", RecurringType: habit.RecurringDaily},
			{Title: "Недельный обзор целей", Category: "Работа", RecurringType: habit.RecurringWeekly},
			{Title: "Дневник", Category: "Другое", RecurringType: habit.RecurringDaily},
			{Title: "Изучение нового навыка", Category: "Учёба", RecurringType: habit.RecurringDaily},
		},
	},
	{
		ID:   "wellness",
		Name: "Ментальное здоровье",
		Tasks: []TemplateTask{
			{Title: "Медитация 10 минут", Category: "Здоровье", RecurringType: habit.RecurringDaily},
			{Title: "Дневник благодарности", Category: "Другое", RecurringType: habit.RecurringDaily},
			{Title: "Сон 8 часов", Category: "Здоровье", RecurringType: habit.RecurringDaily},
			{Title: "Час без гаджетов", Category: "Здоровье", RecurringType: habit.RecurringDaily},
		},
	},
	{
		ID:   "work",
		Name: "Рабочая рутина",
		Tasks: []TemplateTask{
			{Title: "Планирование дня", Category: "Работа", RecurringType: habit.RecurringDaily},
			{Title: "2 часа глубокой работы", Category: "Работа", RecurringType: habit.RecurringDaily},
			{Title: "Разбор почты", Category: "Работа", RecurringType: habit.RecurringDaily},
			{Title: "Недельное ревью", Category: "Работа", RecurringType: habit.RecurringWeekly},
		},
	},
}

func Find(id string) (Template, bool) {
	for _, t := range All {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}
