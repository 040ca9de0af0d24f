package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/haroldove90-spec/Cowele/internal/app"
	"github.com/haroldove90-spec/Cowele/internal/models"
	apierrors "github.com/haroldove90-spec/Cowele/internal/transport/http/errors"
)

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	f, err := h.App.ProfileForm()
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, f)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in profileRequest
	if err := h.decodeValid(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	p, err := h.App.UpdateProfile(r.Context(), app.ProfileForm{
		FullName:  in.FullName,
		Password:  in.Password,
		AvatarURL: in.AvatarURL,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	p.Password = ""
	writeJSON(w, http.StatusOK, profileResponse{Profile: p, Notice: app.NoticeProfileUpdated})
}

func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	f, err := h.App.UploadAvatar(r.Context(), up.contentType, up.data)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, f)
}

func (h *Handlers) ListProfiles(w http.ResponseWriter, r *http.Request) {
	users, err := h.App.Users()
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *Handlers) RefreshProfiles(w http.ResponseWriter, r *http.Request) {
	if err := h.App.RefreshProfiles(r.Context()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.ListProfiles(w, r)
}

func (h *Handlers) SetProfileStatus(w http.ResponseWriter, r *http.Request) {
	var in statusRequest
	if err := h.decodeValid(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.App.SetUserStatus(r.Context(), chi.URLParam(r, "id"), models.ProfileStatus(in.Status)); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ToggleProfileStatus(w http.ResponseWriter, r *http.Request) {
	next, err := h.App.ToggleUserStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: next})
}

func (h *Handlers) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.App.DeleteUser(r.Context(), chi.URLParam(r, "id"), confirmed(r)); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.App.Reviews()
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handlers) RefreshReviews(w http.ResponseWriter, r *http.Request) {
	if err := h.App.RefreshReviews(r.Context()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.ListReviews(w, r)
}

func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.App.Dashboard()
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}
