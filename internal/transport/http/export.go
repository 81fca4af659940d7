package http

import "net/http"

func (h *Handler) exportQuizForCompany(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "companyID", "quizID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := h.svc.Export.ExportQuizResultsForCompany(r.Context(), ids[0], ids[1], callerID(r))
	h.respond(w, r, rows, err)
}

func (h *Handler) exportQuizForUser(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "userID", "quizID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	snap, err := h.svc.Export.ExportQuizResultsForUser(r.Context(), ids[1], ids[0], callerID(r))
	h.respond(w, r, snap, err)
}

func (h *Handler) exportAllForUser(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "companyID", "userID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := h.svc.Export.ExportAllQuizResultsForUser(r.Context(), ids[0], ids[1], callerID(r))
	h.respond(w, r, rows, err)
}

func (h *Handler) exportCompanyUserQuiz(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "companyID", "userID", "quizID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.Export.ExportAllQuizResultsForCompany(r.Context(), ids[0], ids[2], ids[1], callerID(r))
	h.respond(w, r, res, err)
}
