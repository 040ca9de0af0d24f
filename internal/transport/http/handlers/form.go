package handlers

import (
	"net/http"

	apierrors "github.com/haroldove90-spec/Cowele/internal/transport/http/errors"
)

func (h *Handlers) GetForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.App.Form())
}

func (h *Handlers) PatchForm(w http.ResponseWriter, r *http.Request) {
	var in formPatch
	if err := h.decodeValid(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.App.PatchForm(in.toPatch()))
}

func (h *Handlers) FocusCoords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.App.FocusCoords())
}

func (h *Handlers) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	f, err := h.App.UploadPhoto(r.Context(), up.filename, up.contentType, up.data)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, f)
}

func (h *Handlers) SubmitForm(w http.ResponseWriter, r *http.Request) {
	editing := h.App.Form().Editing()

	id, err := h.App.SubmitForm(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	status := http.StatusCreated
	if editing {
		status = http.StatusOK
	}

	writeJSON(w, status, submitResponse{ID: id, Form: h.App.Form()})
}

func (h *Handlers) ResetForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.App.ResetForm())
}
