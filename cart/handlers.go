package cart

import (
	"context"
	"net/http"
	"time"

	"gadgethub/utils"

	"github.com/julienschmidt/httprouter"
)

type Handlers struct {
	svc *Service
}

func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := utils.UserObjectID(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	var req ItemRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	c, err := h.svc.Add(ctx, user, req)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, c, "")
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := utils.UserObjectID(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	c, err := h.svc.Get(ctx, user)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if c.Empty() {
		utils.SendResponse(w, http.StatusOK, []any{}, "Cart is empty")
		return
	}
	utils.SendResponse(w, http.StatusOK, c, "")
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := utils.UserObjectID(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	var req ItemRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	c, err := h.svc.Update(ctx, user, req)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, c, "Cart item updated")
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := utils.UserObjectID(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	var req RemoveRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	c, err := h.svc.Remove(ctx, user, req)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, c, "Product removed from cart")
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := utils.UserObjectID(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	if err := h.svc.Clear(ctx, user); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, nil, "Cart cleared successfully")
}
