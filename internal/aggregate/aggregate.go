// Package aggregate joins resolved product and user details onto order
// records. All dependency failures have already been absorbed by the
// resolvers; this package only renders placeholders for whatever stayed
// unresolved.
package aggregate

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/foodfast/services/internal/models"
	"github.com/foodfast/services/pkg/logging"
	"github.com/foodfast/services/pkg/resolve"
)

// UnknownUserName is rendered when an order's user cannot be resolved.
const UnknownUserName = "Unknown"

// ProductInfo is one product entry in an order view. Name and Price are
// null when the product could not be resolved.
type ProductInfo struct {
	ID    int64    `json:"id"`
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
}

// OrderView is the outward aggregated order shape.
type OrderView struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	UserName    string        `json:"user_name"`
	ProductIDs  string        `json:"product_ids"`
	ProductList []ProductInfo `json:"product_list"`
	Total       float64       `json:"total"`
	Status      string        `json:"status"`
}

// Aggregator assembles order views from the two entity resolvers.
type Aggregator struct {
	products *resolve.Resolver[models.Product]
	users    *resolve.Resolver[models.User]
	logger   zerolog.Logger
}

// New creates an aggregator over the product and user resolvers.
func New(products *resolve.Resolver[models.Product], users *resolve.Resolver[models.User]) *Aggregator {
	return &Aggregator{
		products: products,
		users:    users,
		logger:   logging.NewLogger("aggregate"),
	}
}

// Views builds the aggregated views for a batch of orders. Each entity
// kind is resolved once for the whole batch, never once per order.
func (a *Aggregator) Views(ctx context.Context, orders []models.Order) []OrderView {
	var userIDs, productIDs []int64
	parsed := make([][]int64, len(orders))

	for i, o := range orders {
		userIDs = append(userIDs, o.UserID)

		ids, err := models.ParseProductIDs(o.ProductIDs)
		if err != nil {
			// Stored field is corrupt; render the order without products
			// rather than failing the whole listing.
			a.logger.Error().Err(err).Int64("order_id", o.ID).Msg("Corrupt product_ids field")
			ids = nil
		}
		parsed[i] = ids
		productIDs = append(productIDs, ids...)
	}

	var productsByID map[int64]*models.Product
	if len(productIDs) > 0 {
		productsByID = a.products.Resolve(ctx, productIDs)
	}
	var usersByID map[int64]*models.User
	if len(userIDs) > 0 {
		usersByID = a.users.Resolve(ctx, userIDs)
	}

	views := make([]OrderView, len(orders))
	for i, o := range orders {
		list := make([]ProductInfo, len(parsed[i]))
		for j, pid := range parsed[i] {
			info := ProductInfo{ID: pid}
			if p := productsByID[pid]; p != nil {
				name, price := p.Name, p.Price
				info.Name = &name
				info.Price = &price
			}
			list[j] = info
		}

		userName := UnknownUserName
		if u := usersByID[o.UserID]; u != nil {
			userName = u.Name
		}

		views[i] = OrderView{
			ID:          o.ID,
			UserID:      o.UserID,
			UserName:    userName,
			ProductIDs:  o.ProductIDs,
			ProductList: list,
			Total:       o.Total,
			Status:      o.Status,
		}
	}
	return views
}

// View builds the aggregated view for a single order.
func (a *Aggregator) View(ctx context.Context, o models.Order) OrderView {
	return a.Views(ctx, []models.Order{o})[0]
}

// OrderTotal sums the resolved prices for the given product ids, counted
// once per occurrence. An unresolved product contributes zero, so a
// dependency outage never blocks order creation or update.
func (a *Aggregator) OrderTotal(ctx context.Context, ids []int64) float64 {
	if len(ids) == 0 {
		return 0
	}

	productsByID := a.products.Resolve(ctx, ids)

	var total float64
	for _, id := range ids {
		if p := productsByID[id]; p != nil {
			total += p.Price
		}
	}
	return total
}
