package models

import "time"

// TopicStat aggregates per-topic learning outcomes. Accuracy and
// StruggleScore are derived, not stored.
type TopicStat struct {
	Topic             string     `json:"topic"`
	SessionsStarted   int        `json:"sessions_started"`
	SessionsCompleted int        `json:"sessions_completed"`
	CardsStudied      int        `json:"cards_studied"`
	QuestionsAnswered int        `json:"questions_answered"`
	QuestionsCorrect  int        `json:"questions_correct"`
	Accuracy          float64    `json:"accuracy"`
	StruggleScore     float64    `json:"struggle_score"`
	LastSessionAt     *time.Time `json:"last_session_at,omitempty"`
}
