package domain

import "time"

const (
	// MinQuizQuestions is the smallest question set a quiz may ever have.
	MinQuizQuestions = 2
	// MinQuestionAnswers is the smallest answer set a question may have.
	MinQuestionAnswers = 2
)

// Role is a user's role inside a company.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Company owns quizzes and members.
type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is the minimal user profile the analytics views need.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Answer is one selectable answer of a question.
type Answer struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
}

// Question belongs to exactly one quiz.
type Question struct {
	ID      int64    `json:"id"`
	QuizID  int64    `json:"quiz_id"`
	Title   string   `json:"title"`
	Answers []Answer `json:"answers"`
}

// Quiz is an ordered collection of questions owned by a company.
type Quiz struct {
	ID                     int64      `json:"id"`
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	ParticipationFrequency int        `json:"participation_frequency"` // days
	CompanyID              int64      `json:"company_id"`
	Questions              []Question `json:"questions,omitempty"`
}

// SubmittedAnswer is one (question, answer) pair of a participation submission.
type SubmittedAnswer struct {
	QuestionID int64 `json:"question_id"`
	AnswerID   int64 `json:"answer_id"`
}

// UserAnswer is the audit record of a correct choice, written with its participation.
type UserAnswer struct {
	UserID     int64
	QuestionID int64
	AnswerID   int64
	IsCorrect  bool
}

// Participation is one completed, immutable quiz attempt.
type Participation struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	QuizID         int64     `json:"quiz_id"`
	CompanyID      int64     `json:"company_id"`
	ParticipatedAt time.Time `json:"participated_at"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
}

// ScorePercentage returns 100*score/total, or 0 for an empty quiz.
func (p Participation) ScorePercentage() float64 {
	if p.TotalQuestions <= 0 {
		return 0
	}
	return float64(p.Score) / float64(p.TotalQuestions) * 100
}

// Snapshot builds the cache payload for the participation.
func (p Participation) Snapshot() ParticipationSnapshot {
	return ParticipationSnapshot{
		UserID:          p.UserID,
		CompanyID:       p.CompanyID,
		QuizID:          p.QuizID,
		TotalQuestions:  p.TotalQuestions,
		CorrectAnswers:  p.Score,
		ScorePercentage: p.ScorePercentage(),
	}
}

// ParticipationWithQuiz joins a participation with its quiz title.
type ParticipationWithQuiz struct {
	Participation
	QuizTitle string
}

// ParticipationWithUser joins a participation with the participant's name.
type ParticipationWithUser struct {
	Participation
	FirstName string
	LastName  string
}

// ParticipationSnapshot is the denormalized JSON form stored in the result cache.
type ParticipationSnapshot struct {
	UserID          int64   `json:"user_id"`
	CompanyID       int64   `json:"company_id"`
	QuizID          int64   `json:"quiz_id"`
	TotalQuestions  int     `json:"total_questions"`
	CorrectAnswers  int     `json:"correct_answers"`
	ScorePercentage float64 `json:"score_percentage"`
}

// ParticipationResult is returned to the participant after a submission.
type ParticipationResult struct {
	ParticipationID int64     `json:"participation_id"`
	UserID          int64     `json:"user_id"`
	CompanyID       int64     `json:"company_id"`
	QuizID          int64     `json:"quiz_id"`
	TotalQuestions  int       `json:"total_questions"`
	CorrectAnswers  int       `json:"correct_answers"`
	ScorePercentage float64   `json:"score_percentage"`
	ParticipatedAt  time.Time `json:"participated_at"`
}

// CompanyUserResults is the company+user cache view: attempted quiz ids plus the latest snapshot.
type CompanyUserResults struct {
	QuizIDs []int64               `json:"quiz_ids"`
	Latest  ParticipationSnapshot `json:"latest"`
}

// RetakeStatus reports whether a quiz is due for another attempt.
type RetakeStatus struct {
	QuizID             int64      `json:"quiz_id"`
	LastParticipatedAt *time.Time `json:"last_participated_at,omitempty"`
	NextAvailableAt    *time.Time `json:"next_available_at,omitempty"`
	Due                bool       `json:"due"`
}

// RetakeReminder is a pending retake prompt for one member and one quiz.
type RetakeReminder struct {
	UserID  int64  `json:"user_id"`
	QuizID  int64  `json:"quiz_id"`
	Message string `json:"message"`
}
