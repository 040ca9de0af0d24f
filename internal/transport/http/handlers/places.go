package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/haroldove90-spec/Cowele/internal/app"
	"github.com/haroldove90-spec/Cowele/internal/geo"
	apierrors "github.com/haroldove90-spec/Cowele/internal/transport/http/errors"
)

func (h *Handlers) ListPlaces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.App.Places(r.URL.Query().Get("q")))
}

func (h *Handlers) RefreshPlaces(w http.ResponseWriter, r *http.Request) {
	if err := h.App.RefreshPlaces(r.Context()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.App.Places(""))
}

func (h *Handlers) GetPlace(w http.ResponseWriter, r *http.Request) {
	p, err := h.App.Place(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) SelectPlace(w http.ResponseWriter, r *http.Request) {
	p, err := h.App.SelectPlace(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.App.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// ShowPlace: "ver en mapa" из подтверждения: вкладка explore + выбор места.
func (h *Handlers) ShowPlace(w http.ResponseWriter, r *http.Request) {
	p, err := h.App.ShowInMap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) EditPlace(w http.ResponseWriter, r *http.Request) {
	if err := h.App.StartEditing(r.Context(), chi.URLParam(r, "id")); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.App.Form())
}

func (h *Handlers) DeletePlace(w http.ResponseWriter, r *http.Request) {
	if err := h.App.DeletePlace(r.Context(), chi.URLParam(r, "id"), confirmed(r)); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Navigate(w http.ResponseWriter, r *http.Request) {
	q := navigateQuery{App: r.URL.Query().Get("app")}
	if err := h.validate.Struct(q); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidRequest)
		return
	}

	url, err := h.App.NavigationURL(chi.URLParam(r, "id"), geo.NavApp(q.App))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, navigateResponse{URL: url})
}

func (h *Handlers) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var in reviewRequest
	if err := h.decodeValid(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	res, err := h.App.SubmitReview(r.Context(), chi.URLParam(r, "id"), in.Rating, in.Comment)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := reviewResponse{Review: res.Review, Awarded: res.Awarded, Points: res.Points}
	if res.Awarded {
		out.Notice = app.NoticeReviewSaved
	}

	writeJSON(w, http.StatusCreated, out)
}
