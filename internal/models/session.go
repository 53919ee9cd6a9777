package models

import "time"

// SessionType distinguishes the two learning flows: a fast session is a fixed
// flashcard set followed by a single evaluation round; a depth session starts
// with a prerequisite-topic evaluation and remedial learning cycles.
type SessionType string

const (
	SessionTypeFast  SessionType = "fast"
	SessionTypeDepth SessionType = "depth"
)

// Valid reports whether t is one of the known session types.
func (t SessionType) Valid() bool {
	return t == SessionTypeFast || t == SessionTypeDepth
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusAbandoned  SessionStatus = "abandoned"
)

// Terminal reports whether the session aggregate is immutable.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusAbandoned
}

type Session struct {
	ID                int64         `json:"id"`
	Type              SessionType   `json:"type"`
	Status            SessionStatus `json:"status"`
	Topic             string        `json:"topic"`
	TotalFlashcards   int           `json:"total_flashcards"`
	StudiedFlashcards int           `json:"studied_flashcards"`
	TotalQuestions    int           `json:"total_questions"`
	CorrectAnswers    int           `json:"correct_answers"`
	// Prerequisites is nil until the prerequisite list has been generated for
	// a depth session; presence (even empty) marks that step as done.
	Prerequisites []string `json:"prerequisites,omitempty"`
	// PrerequisiteResults is nil until an evaluation cycle has been scored.
	PrerequisiteResults map[string]bool `json:"prerequisite_results,omitempty"`
	FinalScore          *float64        `json:"final_score,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

type SessionFilter struct {
	Type     string
	Status   string
	Topic    string
	Limit    int
	Offset   int
	OrderDir string
}

type SessionFlashcard struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	Index     int       `json:"index"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	IsStudied bool      `json:"is_studied"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionQuestion struct {
	ID            int64      `json:"id"`
	SessionID     int64      `json:"session_id"`
	Index         int        `json:"index"`
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correct_answer"`
	UserAnswer    *string    `json:"user_answer,omitempty"`
	IsCorrect     *bool      `json:"is_correct,omitempty"`
	AnsweredAt    *time.Time `json:"answered_at,omitempty"`
}

// SessionDetail is a session together with its child records.
type SessionDetail struct {
	Session
	Flashcards []SessionFlashcard `json:"flashcards"`
	Questions  []SessionQuestion  `json:"questions"`
}
