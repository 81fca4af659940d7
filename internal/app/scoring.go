package app

import (
	"context"
	"fmt"

	"company-quiz-service/internal/domain"
)

// Scorecard is the outcome of validating and scoring one submission.
type Scorecard struct {
	Correct        int
	TotalQuestions int
	UserAnswers    []domain.UserAnswer
}

// ScoreSubmission validates the submitted pairs and counts correct answers.
//
// Only submitted pairs are scored, but TotalQuestions is always the quiz's full
// question count, so skipped questions count as wrong. Pairs are resolved by id
// alone: the answer is not checked against the paired question, nor the
// question against the quiz.
func ScoreSubmission(ctx context.Context, src QuestionSource, quizID, userID int64, answers []domain.SubmittedAnswer) (Scorecard, error) {
	questions, err := src.ListQuestions(ctx, quizID)
	if err != nil {
		return Scorecard{}, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) < domain.MinQuizQuestions {
		return Scorecard{}, domain.InvalidField(fmt.Sprintf("a quiz must have at least %d questions", domain.MinQuizQuestions))
	}

	card := Scorecard{TotalQuestions: len(questions)}
	for _, submitted := range answers {
		question, err := src.GetQuestion(ctx, submitted.QuestionID)
		if err != nil {
			return Scorecard{}, err
		}
		answer, err := src.GetAnswer(ctx, submitted.AnswerID)
		if err != nil {
			return Scorecard{}, err
		}
		if !answer.IsCorrect {
			continue
		}
		card.Correct++
		card.UserAnswers = append(card.UserAnswers, domain.UserAnswer{
			UserID:     userID,
			QuestionID: question.ID,
			AnswerID:   answer.ID,
			IsCorrect:  true,
		})
	}
	return card, nil
}
