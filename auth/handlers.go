package auth

import (
	"context"
	"net/http"
	"time"

	"gadgethub/middleware"
	"gadgethub/utils"

	"github.com/julienschmidt/httprouter"
)

type Handlers struct {
	svc *Service
}

func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var in RegisterRequest
	if err := utils.DecodeAndValidate(r, &in); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	u, err := h.svc.Register(ctx, in)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusCreated, u, "Registration successful. Verification code sent")
}

func (h *Handlers) Verify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var in VerifyRequest
	if err := utils.DecodeAndValidate(r, &in); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	u, err := h.svc.Verify(ctx, in)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, u, "Account verified")
}

func (h *Handlers) ResendCode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var in ResendRequest
	if err := utils.DecodeAndValidate(r, &in); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if err := h.svc.ResendCode(ctx, in); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, nil, "Verification code sent")
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var in LoginRequest
	if err := utils.DecodeAndValidate(r, &in); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	res, err := h.svc.Login(ctx, in)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, res, "Login successful")
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Logout(ctx, middleware.ClaimsFromRequest(r)); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, nil, "Logged out successfully")
}
