package admin

import (
	"context"
	"net/http"
	"time"

	"gadgethub/models"
	"gadgethub/orders"
	"gadgethub/products"
	"gadgethub/users"
	"gadgethub/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

// Dashboard gathers store-wide counts for the admin UI.
type Dashboard struct {
	products products.Store
	users    users.Store
	orders   orders.Store
}

func NewDashboard(p products.Store, u users.Store, o orders.Store) *Dashboard {
	return &Dashboard{products: p, users: u, orders: o}
}

// Metrics runs the counts concurrently.
func (d *Dashboard) Metrics(ctx context.Context) (*models.DashboardMetrics, error) {
	var m models.DashboardMetrics
	total, inStock, featured, promo := products.MetricFilters()

	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int64, filter bson.M) {
		g.Go(func() error {
			n, err := d.products.Count(ctx, filter)
			*dst = n
			return err
		})
	}
	count(&m.TotalProducts, total)
	count(&m.InStockProducts, inStock)
	count(&m.FeaturedProducts, featured)
	count(&m.PromoProducts, promo)

	g.Go(func() error {
		n, err := d.users.Count(ctx, bson.M{})
		m.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, sales, err := d.orders.Totals(ctx)
		m.TotalOrders, m.Sales = n, utils.RoundMoney(sales)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (d *Dashboard) GetMetrics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	m, err := d.Metrics(ctx)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.SendResponse(w, http.StatusOK, m, "")
}
