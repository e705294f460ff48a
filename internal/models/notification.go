package models

import "time"

// Notification is a celebration note written by the worker when a
// vision-board goal is completed
type Notification struct {
	ID        string    `json:"id"`
	GoalID    int64     `json:"goal_id"`
	GoalTitle string    `json:"goal_title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
