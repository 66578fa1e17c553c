package subscription

import (
	"net/http"
)

// maxFormBytes caps the urlencoded body.  Two short fields never come close.
const maxFormBytes = 64 << 10

// Handler adapts Intake to POST /subscriptions.  Every response has an
// empty body: 200 accepted, 400 rejected or unparseable, 500 storage failure.
type Handler struct {
	intake *Intake
}

// NewHandler returns the HTTP adapter for in.
func NewHandler(in *Intake) *Handler { return &Handler{intake: in} }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Missing keys read as "", which the value objects reject.
	out := h.intake.Handle(r.Context(), RawSubmission{
		Email: r.PostForm.Get("email"),
		Name:  r.PostForm.Get("name"),
	})

	w.WriteHeader(statusCode(out.Status))
}

func statusCode(s Status) int {
	switch s {
	case Accepted:
		return http.StatusOK
	case Rejected:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
