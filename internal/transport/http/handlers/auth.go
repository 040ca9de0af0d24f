package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/haroldove90-spec/Cowele/internal/router"
	apierrors "github.com/haroldove90-spec/Cowele/internal/transport/http/errors"
)

func (h *Handlers) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.App.State())
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := h.decodeValid(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if _, err := h.App.Login(r.Context(), in.Username, in.Password); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.App.State())
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := h.decodeValid(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if _, err := h.App.Register(r.Context(), in.Username, in.Password, in.FullName); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.App.State())
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.App.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ToggleView(w http.ResponseWriter, r *http.Request) {
	_, notice, err := h.App.ToggleViewAsUser(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, viewToggleResponse{State: h.App.State(), Notice: notice})
}

func (h *Handlers) SwitchTab(w http.ResponseWriter, r *http.Request) {
	tab, err := router.Parse(chi.URLParam(r, "tab"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.App.SwitchTab(r.Context(), tab); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.App.State())
}
