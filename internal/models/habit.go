package models

// Habit represents a recurring daily action.
// Icon is an opaque presentation-layer key (e.g. "sun", "dumbbell");
// store logic never interprets it.
type Habit struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Completed bool   `json:"completed"`
}

// Todo represents a single-day task
type Todo struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// WeeklyGoal is a checklist item for the current week. It has no relation
// to vision-board goals despite the name.
type WeeklyGoal struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// CoreValue is a personal value statement used to seed journal prompts
type CoreValue struct {
	ID        int64  `json:"id"`
	Value     string `json:"value"`
	Statement string `json:"statement"`
}
