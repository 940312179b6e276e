package orders

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
	hub *Hub
}

func NewHandlers(svc *Service, hub *Hub) *Handlers {
	return &Handlers{svc: svc, hub: hub}
}

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := utils.UserObjectID(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	var req PlaceOrderRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	order, err := h.svc.PlaceOrder(ctx, user, req)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusCreated, order, "Order placed successfully")
}

func (h *Handlers) GetMyOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := utils.UserObjectID(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	list, err := h.svc.ListMyOrders(ctx, user)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, list, "")
}

// GetAllOrders is admin only.
func (h *Handlers) GetAllOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	list, err := h.svc.ListAll(ctx)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, list, "")
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := utils.UserObjectID(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	view, err := h.svc.Get(ctx, ps.ByName("id"), user, utils.IsAdmin(r))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, view, "")
}

// UpdateOrderStatus is admin only.
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var upd models.StatusUpdate
	if err := utils.DecodeAndValidate(r, &upd); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	order, err := h.svc.UpdateOrderStatus(ctx, ps.ByName("id"), upd)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, order, "Order updated successfully")
}

func (h *Handlers) DownloadInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := utils.UserObjectID(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	pdf, err := h.svc.Invoice(ctx, ps.ByName("id"), user, utils.IsAdmin(r))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=invoice-"+ps.ByName("id")+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
