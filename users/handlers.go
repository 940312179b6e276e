package users

import (
	"context"
	"net/http"
	"time"

	"gadgethub/models"
	"gadgethub/utils"

	"github.com/julienschmidt/httprouter"
)

type Handlers struct {
	svc *Service
}

func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := utils.UserObjectID(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	u, err := h.svc.Profile(ctx, id)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, u, "")
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := utils.UserObjectID(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	var in ProfileUpdate
	if err := utils.DecodeAndValidate(r, &in); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	u, err := h.svc.UpdateProfile(ctx, id, in)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, u, "Profile updated")
}

func (h *Handlers) GetAllUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	list, err := h.svc.List(ctx)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, list, "")
}

func (h *Handlers) GetUserByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	u, err := h.svc.Get(ctx, ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, u, "")
}

func (h *Handlers) UpdateUserByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var in models.UserUpdate
	if err := utils.DecodeAndValidate(r, &in); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	u, err := h.svc.Update(ctx, ps.ByName("id"), in)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, u, "User updated successfully")
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, ps.ByName("id")); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, nil, "User deleted successfully")
}
