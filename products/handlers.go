package products

import (
	"context"
	"net/http"
	"time"

	"gadgethub/models"
	"gadgethub/utils"

	"github.com/julienschmidt/httprouter"
)

type Handlers struct {
	svc       *Service
	staticDir string
}

func NewHandlers(svc *Service, staticDir string) *Handlers {
	return &Handlers{svc: svc, staticDir: staticDir}
}

func (h *Handlers) GetAllProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	items, err := h.svc.List(ctx)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, items, "")
}

func (h *Handlers) GetProductByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	p, err := h.svc.Get(ctx, ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, p, "")
}

func (h *Handlers) GetFeaturedProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	items, err := h.svc.Featured(ctx)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, items, "")
}

func (h *Handlers) GetPromoDeals(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	items, err := h.svc.Promos(ctx)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, items, "")
}

// GetFilteredProducts serves /products/filter/advanced.
func (h *Handlers) GetFilteredProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	q, err := parseProductQuery(r)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	page, err := h.svc.FilteredQuery(ctx, q)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"data":       page.Items,
		"page":       page.Page,
		"totalPages": page.TotalPages,
		"totalItems": page.TotalItems,
	})
}

func parseProductQuery(r *http.Request) (models.ProductQuery, error) {
	v := r.URL.Query()
	q := models.ProductQuery{
		Category:  v.Get("category"),
		Brand:     v.Get("brand"),
		Condition: v.Get("condition"),
	}
	if v.Has("inStock") {
		inStock := v.Get("inStock") == "true"
		q.InStock = &inStock
	}

	var err error
	if q.MinPrice, err = utils.ParseOptionalFloat(v.Get("minPrice"), "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = utils.ParseOptionalFloat(v.Get("maxPrice"), "maxPrice"); err != nil {
		return q, err
	}

	q.Page, q.Limit = utils.ParsePage(r, DefaultPageSize)
	return q, nil
}

// SearchProducts serves /products/search?q=.
func (h *Handlers) SearchProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	items, err := h.svc.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, items, "")
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var in ProductInput
	if err := utils.DecodeAndValidate(r, &in); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	p, err := h.svc.Create(ctx, in)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusCreated, p, "Product created successfully")
}

func (h *Handlers) BulkCreateProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var payload struct {
		Products []ProductInput `json:"products"`
	}
	if err := utils.DecodeAndValidate(r, &payload); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	created, err := h.svc.BulkCreate(ctx, payload.Products)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"count":   len(created),
		"data":    created,
	})
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var patch ProductPatch
	if err := utils.DecodeAndValidate(r, &patch); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	p, err := h.svc.Update(ctx, ps.ByName("id"), patch)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, p, "Product updated successfully")
}

func (h *Handlers) SoftDeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.svc.SoftDelete(ctx, ps.ByName("id")); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, nil, "Product deleted (soft delete)")
}
