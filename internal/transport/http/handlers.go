package http

import (
	"log/slog"
	"net/http"

	"company-quiz-service/internal/app"
	"company-quiz-service/internal/domain"
)

// Handler adapts HTTP requests onto the application services.
type Handler struct {
	svc Services
	log *slog.Logger
}

type participationRequest struct {
	UserAnswers []domain.SubmittedAnswer `json:"user_answers"`
}

func (h *Handler) submitParticipation(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r, "quizID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req participationRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.svc.Quiz.SubmitParticipation(r.Context(), quizID, req.UserAnswers, callerID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) retakeStatus(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r, "quizID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status, err := h.svc.Quiz.RetakeStatus(r.Context(), quizID, callerID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var in app.QuizInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	quiz, err := h.svc.Catalog.CreateQuiz(r.Context(), in, callerID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) updateQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r, "quizID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var patch app.QuizPatch
	if err := decode(r, &patch); err != nil {
		h.fail(w, r, err)
		return
	}
	quiz, err := h.svc.Catalog.UpdateQuiz(r.Context(), quizID, patch, callerID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r, "quizID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Catalog.DeleteQuiz(r.Context(), quizID, callerID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addQuestion(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r, "quizID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in app.QuestionInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	question, err := h.svc.Catalog.AddQuestion(r.Context(), quizID, in, callerID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "quizID", "questionID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Catalog.DeleteQuestion(r.Context(), ids[0], ids[1], callerID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	quizzes, err := h.svc.Catalog.ListQuizzes(r.Context(), companyID, queryInt(r, "offset", 0), queryInt(r, "limit", 50))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}
