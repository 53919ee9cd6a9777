package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/avelar/studyflash/internal/logger"
	"github.com/avelar/studyflash/internal/models"
	"github.com/avelar/studyflash/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) CreateWithContent(ctx context.Context, s models.Session, cards []models.SessionFlashcard, questions []models.SessionQuestion, documentIDs []string) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("creating session: topic=%s, type=%s, cards=%d, questions=%d", s.Topic, s.Type, len(cards), len(questions))

	prereqs, err := marshalNullable(s.Prerequisites)
	if err != nil {
		return 0, err
	}
	results, err := marshalNullable(s.PrerequisiteResults)
	if err != nil {
		return 0, err
	}

	var id int64
	err = tx(ctx, r.db, func(t *sql.Tx) error {
		res, err := t.ExecContext(ctx, `
INSERT INTO sessions (session_type, status, topic, total_flashcards, studied_flashcards, total_questions, correct_answers, prerequisites, prerequisite_results)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, s.Type, s.Status, s.Topic, s.TotalFlashcards, s.StudiedFlashcards, s.TotalQuestions, s.CorrectAnswers, prereqs, results)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}

		for _, c := range cards {
			if _, err := t.ExecContext(ctx, `
INSERT INTO session_flashcards (session_id, card_index, question, answer, is_studied)
VALUES (?, ?, ?, ?, ?)
`, id, c.Index, c.Question, c.Answer, c.IsStudied); err != nil {
				return fmt.Errorf("insert flashcard %d: %w", c.Index, err)
			}
		}

		for _, q := range questions {
			opts, err := json.Marshal(q.Options)
			if err != nil {
				return err
			}
			if _, err := t.ExecContext(ctx, `
INSERT INTO session_questions (session_id, question_index, question, options, correct_answer)
VALUES (?, ?, ?, ?, ?)
`, id, q.Index, q.Question, string(opts), q.CorrectAnswer); err != nil {
				return fmt.Errorf("insert question %d: %w", q.Index, err)
			}
		}

		for _, docID := range documentIDs {
			if _, err := t.ExecContext(ctx, `
INSERT INTO session_documents (session_id, document_id) VALUES (?, ?)
`, id, docID); err != nil {
				return fmt.Errorf("link document %s: %w", docID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create session: %v", err)
		return 0, err
	}

	log.Debug("session created: id=%d", id)
	return id, nil
}

func (r *sessionRepository) Get(ctx context.Context, id int64) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session: id=%d", id)

	row := r.db.QueryRowContext(ctx, `
SELECT id, session_type, status, topic, total_flashcards, studied_flashcards, total_questions, correct_answers,
       prerequisites, prerequisite_results, final_score, created_at, updated_at
FROM sessions
WHERE id = ?
`, id)

	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing sessions: type=%s, status=%s, topic=%s", filter.Type, filter.Status, filter.Topic)

	query := sessionSelect(filter).OrderBy("created_at " + orderDir(filter.OrderDir))
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	log.Debug("found %d sessions", len(sessions))
	return sessions, rows.Err()
}

func (r *sessionRepository) Count(ctx context.Context, filter models.SessionFilter) (int, error) {
	query := sqlBuilder.Select("COUNT(*)").From("sessions")
	query = applySessionFilter(query, filter)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *sessionRepository) Flashcards(ctx context.Context, sessionID int64) ([]models.SessionFlashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, session_id, card_index, question, answer, is_studied, created_at
FROM session_flashcards
WHERE session_id = ?
ORDER BY card_index
`, sessionID)
	if err != nil {
		log.Error("failed to query flashcards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []models.SessionFlashcard
	for rows.Next() {
		var c models.SessionFlashcard
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Index, &c.Question, &c.Answer, &c.IsStudied, &c.CreatedAt); err != nil {
			log.Error("failed to scan flashcard row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *sessionRepository) Questions(ctx context.Context, sessionID int64) ([]models.SessionQuestion, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, session_id, question_index, question, options, correct_answer, user_answer, is_correct, answered_at
FROM session_questions
WHERE session_id = ?
ORDER BY question_index
`, sessionID)
	if err != nil {
		log.Error("failed to query questions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var questions []models.SessionQuestion
	for rows.Next() {
		var q models.SessionQuestion
		var opts string
		var userAnswer sql.NullString
		var isCorrect sql.NullBool
		var answeredAt sql.NullTime
		if err := rows.Scan(&q.ID, &q.SessionID, &q.Index, &q.Question, &opts, &q.CorrectAnswer, &userAnswer, &isCorrect, &answeredAt); err != nil {
			log.Error("failed to scan question row: %v", err)
			return nil, err
		}
		if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
			log.Error("failed to decode options for question %d: %v", q.ID, err)
			return nil, err
		}
		if userAnswer.Valid {
			q.UserAnswer = &userAnswer.String
		}
		if isCorrect.Valid {
			q.IsCorrect = &isCorrect.Bool
		}
		if answeredAt.Valid {
			q.AnsweredAt = &answeredAt.Time
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *sessionRepository) DocumentIDs(ctx context.Context, sessionID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT document_id FROM session_documents WHERE session_id = ?
`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *sessionRepository) MarkFlashcardStudied(ctx context.Context, sessionID int64, index int) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("marking flashcard studied: session_id=%d, index=%d", sessionID, index)

	var newlyStudied bool
	err := tx(ctx, r.db, func(t *sql.Tx) error {
		res, err := t.ExecContext(ctx, `
UPDATE session_flashcards
SET is_studied = 1
WHERE session_id = ? AND card_index = ? AND is_studied = 0
`, sessionID, index)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		newlyStudied = n > 0
		if !newlyStudied {
			return nil
		}
		_, err = t.ExecContext(ctx, `
UPDATE sessions
SET studied_flashcards = studied_flashcards + 1, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, sessionID)
		return err
	})
	if err != nil {
		log.Error("failed to mark flashcard studied: %v", err)
		return false, err
	}
	return newlyStudied, nil
}

func (r *sessionRepository) RecordAnswer(ctx context.Context, sessionID int64, index int, answer string, correct bool) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("recording answer: session_id=%d, index=%d, correct=%t", sessionID, index, correct)

	return tx(ctx, r.db, func(t *sql.Tx) error {
		// user_answer and is_correct are always written together.
		res, err := t.ExecContext(ctx, `
UPDATE session_questions
SET user_answer = ?, is_correct = ?, answered_at = CURRENT_TIMESTAMP
WHERE session_id = ? AND question_index = ? AND user_answer IS NULL
`, answer, correct, sessionID, index)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}
		if correct {
			if _, err := t.ExecContext(ctx, `
UPDATE sessions
SET correct_answers = correct_answers + 1, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, sessionID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *sessionRepository) SetPrerequisites(ctx context.Context, sessionID int64, prerequisites []string) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("setting prerequisites: session_id=%d, count=%d", sessionID, len(prerequisites))

	if prerequisites == nil {
		prerequisites = []string{}
	}
	data, err := json.Marshal(prerequisites)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE sessions SET prerequisites = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`, string(data), sessionID)
	if err != nil {
		log.Error("failed to set prerequisites: %v", err)
	}
	return err
}

func (r *sessionRepository) SetPrerequisiteResults(ctx context.Context, sessionID int64, results map[string]bool) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("setting prerequisite results: session_id=%d, count=%d", sessionID, len(results))

	if results == nil {
		results = map[string]bool{}
	}
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE sessions SET prerequisite_results = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`, string(data), sessionID)
	if err != nil {
		log.Error("failed to set prerequisite results: %v", err)
	}
	return err
}

func (r *sessionRepository) Complete(ctx context.Context, sessionID int64, finalScore float64) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("completing session: id=%d, final_score=%.2f", sessionID, finalScore)

	_, err := r.db.ExecContext(ctx, `
UPDATE sessions
SET status = ?, final_score = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, models.SessionStatusCompleted, finalScore, sessionID)
	if err != nil {
		log.Error("failed to complete session: %v", err)
	}
	return err
}

func (r *sessionRepository) UpdateStatus(ctx context.Context, sessionID int64, status models.SessionStatus) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("updating session status: id=%d, status=%s", sessionID, status)

	_, err := r.db.ExecContext(ctx, `
UPDATE sessions SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`, status, sessionID)
	if err != nil {
		log.Error("failed to update session status: %v", err)
	}
	return err
}

func sessionSelect(filter models.SessionFilter) squirrel.SelectBuilder {
	query := sqlBuilder.Select(
		"id", "session_type", "status", "topic", "total_flashcards", "studied_flashcards",
		"total_questions", "correct_answers", "prerequisites", "prerequisite_results",
		"final_score", "created_at", "updated_at",
	).From("sessions")
	return applySessionFilter(query, filter)
}

func applySessionFilter(query squirrel.SelectBuilder, filter models.SessionFilter) squirrel.SelectBuilder {
	if filter.Type != "" {
		query = query.Where(squirrel.Eq{"session_type": filter.Type})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Topic != "" {
		query = query.Where(squirrel.Eq{"topic": filter.Topic})
	}
	return query
}

func orderDir(dir string) string {
	if dir == "ASC" {
		return "ASC"
	}
	return "DESC"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var s models.Session
	var prereqs, results sql.NullString
	var finalScore sql.NullFloat64
	err := row.Scan(&s.ID, &s.Type, &s.Status, &s.Topic, &s.TotalFlashcards, &s.StudiedFlashcards,
		&s.TotalQuestions, &s.CorrectAnswers, &prereqs, &results, &finalScore, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	// NULL means "not generated yet"; an empty JSON list or object still
	// counts as present, which the resolver relies on.
	if prereqs.Valid {
		if err := json.Unmarshal([]byte(prereqs.String), &s.Prerequisites); err != nil {
			return nil, fmt.Errorf("decode prerequisites for session %d: %w", s.ID, err)
		}
		if s.Prerequisites == nil {
			s.Prerequisites = []string{}
		}
	}
	if results.Valid {
		if err := json.Unmarshal([]byte(results.String), &s.PrerequisiteResults); err != nil {
			return nil, fmt.Errorf("decode prerequisite results for session %d: %w", s.ID, err)
		}
		if s.PrerequisiteResults == nil {
			s.PrerequisiteResults = map[string]bool{}
		}
	}
	if finalScore.Valid {
		s.FinalScore = &finalScore.Float64
	}
	return &s, nil
}

func marshalNullable(v any) (any, error) {
	switch val := v.(type) {
	case []string:
		if val == nil {
			return nil, nil
		}
	case map[string]bool:
		if val == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
