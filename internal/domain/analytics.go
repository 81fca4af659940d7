package domain

import "time"

// MonthFormat is the calendar bucket layout used by the analytics series.
const MonthFormat = "2006-01"

// OverallRating is a user's score across every participation.
type OverallRating struct {
	UserID        int64   `json:"user_id"`
	OverallRating float64 `json:"overall_rating"`
}

// MonthlyQuizScore lists the percentages recorded in one month and their mean.
type MonthlyQuizScore struct {
	Scores  []float64 `json:"scores"`
	Average float64   `json:"average"`
}

// QuizScoreTimeData is a per-quiz monthly score series.
type QuizScoreTimeData struct {
	QuizID        int64                       `json:"quiz_id"`
	ScoresByMonth map[string]MonthlyQuizScore `json:"scores_by_month"`
}

// LastQuizParticipation is the latest attempt of one quiz.
type LastQuizParticipation struct {
	QuizID              int64     `json:"quiz_id"`
	QuizTitle           string    `json:"quiz_title"`
	LastParticipationAt time.Time `json:"last_participation_at"`
}

// CompanyAverageScore is the company-wide mean for one month.
type CompanyAverageScore struct {
	TimePeriod   string  `json:"time_period"`
	AverageScore float64 `json:"average_score"`
}

// UserQuizDetailScore is a user's monthly averages for one quiz within a company.
type UserQuizDetailScore struct {
	QuizID        int64              `json:"quiz_id"`
	ScoresByMonth map[string]float64 `json:"scores_by_month"`
}

// UserLastQuizAttempt is a company member's most recent attempt.
type UserLastQuizAttempt struct {
	UserID        int64     `json:"user_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}
