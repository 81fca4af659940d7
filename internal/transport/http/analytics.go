package http

import "net/http"

// User-scoped analytics read the path user; company-scoped ones check the caller's role.

func (h *Handler) overallRating(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rating, err := h.svc.Analytics.GetOverallRating(r.Context(), userID)
	h.respond(w, r, rating, err)
}

func (h *Handler) quizScoresWithTime(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	series, err := h.svc.Analytics.GetQuizScoresWithTime(r.Context(), userID)
	h.respond(w, r, series, err)
}

func (h *Handler) lastParticipations(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	last, err := h.svc.Analytics.GetLastParticipations(r.Context(), userID)
	h.respond(w, r, last, err)
}

func (h *Handler) companyAverageScores(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	avgs, err := h.svc.Analytics.GetCompanyAverageScoresOverTime(r.Context(), companyID, callerID(r))
	h.respond(w, r, avgs, err)
}

func (h *Handler) userDetailedScores(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "companyID", "userID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	scores, err := h.svc.Analytics.GetUserDetailedScoresForCompany(r.Context(), ids[0], ids[1], callerID(r))
	h.respond(w, r, scores, err)
}

func (h *Handler) companyUsersLastAttempts(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	attempts, err := h.svc.Analytics.GetCompanyUsersLastAttempts(r.Context(), companyID, callerID(r))
	h.respond(w, r, attempts, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
