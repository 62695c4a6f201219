package aggregate

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/foodfast/services/internal/models"
	"github.com/foodfast/services/internal/testutil"
	"github.com/foodfast/services/pkg/cache"
	"github.com/foodfast/services/pkg/lookup"
	"github.com/foodfast/services/pkg/resolve"
)

func newAggregator(productsURL, usersURL string) *Aggregator {
	cfg := resolve.DefaultConfig()
	timeout := 300 * time.Millisecond

	products := resolve.New[models.Product]("product",
		lookup.NewClient[models.Product](productsURL, "products", timeout),
		cache.NewMemory[int64, *models.Product]("product"), cfg)
	users := resolve.New[models.User]("user",
		lookup.NewClient[models.User](usersURL, "users", timeout),
		cache.NewMemory[int64, *models.User]("user"), cfg)

	return New(products, users)
}

func seedProducts(m *testutil.MockDirectory) {
	m.SetEntity(1, map[string]any{"id": 1, "name": "Laptop", "price": 1200.0})
	m.SetEntity(2, map[string]any{"id": 2, "name": "Phone", "price": 250.0})
}

func TestViews_JoinsResolvedEntities(t *testing.T) {
	productsMock := testutil.NewMockDirectory("products")
	defer productsMock.Close()
	usersMock := testutil.NewMockDirectory("users")
	defer usersMock.Close()

	seedProducts(productsMock)
	usersMock.SetEntity(10, map[string]any{"id": 10, "name": "Alice", "email": "alice@example.com"})

	agg := newAggregator(productsMock.URL(), usersMock.URL())

	order := models.Order{ID: 1, UserID: 10, ProductIDs: "1,2", Total: 1450, Status: "Pending"}
	view := agg.View(context.Background(), order)

	if view.UserName != "Alice" {
		t.Errorf("UserName = %q, want Alice", view.UserName)
	}
	if view.ProductIDs != "1,2" {
		t.Errorf("ProductIDs = %q, want 1,2", view.ProductIDs)
	}
	if len(view.ProductList) != 2 {
		t.Fatalf("len(ProductList) = %d, want 2", len(view.ProductList))
	}
	first := view.ProductList[0]
	if first.ID != 1 || first.Name == nil || *first.Name != "Laptop" || first.Price == nil || *first.Price != 1200 {
		t.Errorf("ProductList[0] = %+v", first)
	}
	if view.Total != 1450 || view.Status != "Pending" {
		t.Errorf("Total/Status passed through wrong: %+v", view)
	}
}

func TestViews_UnknownUserWhenUserServiceDown(t *testing.T) {
	productsMock := testutil.NewMockDirectory("products")
	defer productsMock.Close()
	seedProducts(productsMock)

	usersMock := testutil.NewMockDirectory("users")
	usersURL := usersMock.URL()
	usersMock.Close() // users service fully down

	agg := newAggregator(productsMock.URL(), usersURL)

	orders := []models.Order{
		{ID: 1, UserID: 10, ProductIDs: "1", Total: 1200, Status: "Pending"},
		{ID: 2, UserID: 11, ProductIDs: "2", Total: 250, Status: "Completed"},
	}

	views := agg.Views(context.Background(), orders)

	if len(views) != 2 {
		t.Fatalf("len(views) = %d, want 2", len(views))
	}
	for _, v := range views {
		if v.UserName != UnknownUserName {
			t.Errorf("Order %d UserName = %q, want %q", v.ID, v.UserName, UnknownUserName)
		}
	}
	// Products still resolved despite the user outage.
	if views[0].ProductList[0].Name == nil {
		t.Error("Products should resolve while users are down")
	}
}

func TestViews_MissingProductRendersNulls(t *testing.T) {
	productsMock := testutil.NewMockDirectory("products")
	defer productsMock.Close()
	productsMock.SetEntity(1, map[string]any{"id": 1, "name": "Laptop", "price": 1200.0})
	// id 2 unknown to the service

	usersMock := testutil.NewMockDirectory("users")
	defer usersMock.Close()
	usersMock.SetEntity(10, map[string]any{"id": 10, "name": "Alice"})

	agg := newAggregator(productsMock.URL(), usersMock.URL())

	view := agg.View(context.Background(), models.Order{ID: 1, UserID: 10, ProductIDs: "1,2"})

	if len(view.ProductList) != 2 {
		t.Fatalf("len(ProductList) = %d, want 2", len(view.ProductList))
	}
	missing := view.ProductList[1]
	if missing.ID != 2 {
		t.Errorf("ProductList[1].ID = %d, want 2", missing.ID)
	}
	if missing.Name != nil || missing.Price != nil {
		t.Errorf("Unresolved product must render null name/price, got %+v", missing)
	}
}

func TestViews_OneResolveCallPerKind(t *testing.T) {
	productsMock := testutil.NewMockDirectory("products")
	defer productsMock.Close()
	seedProducts(productsMock)

	usersMock := testutil.NewMockDirectory("users")
	defer usersMock.Close()
	usersMock.SetEntity(10, map[string]any{"id": 10, "name": "Alice"})
	usersMock.SetEntity(11, map[string]any{"id": 11, "name": "Bob"})

	agg := newAggregator(productsMock.URL(), usersMock.URL())

	orders := []models.Order{
		{ID: 1, UserID: 10, ProductIDs: "1,2"},
		{ID: 2, UserID: 11, ProductIDs: "2,1"},
		{ID: 3, UserID: 10, ProductIDs: "1"},
	}
	agg.Views(context.Background(), orders)

	if batch, single := productsMock.Counts(); batch != 1 || single != 0 {
		t.Errorf("Products requests = %d batch / %d single, want 1/0", batch, single)
	}
	if batch, single := usersMock.Counts(); batch != 1 || single != 0 {
		t.Errorf("Users requests = %d batch / %d single, want 1/0", batch, single)
	}
}

func TestOrderTotal_AllResolvable(t *testing.T) {
	productsMock := testutil.NewMockDirectory("products")
	defer productsMock.Close()
	seedProducts(productsMock)

	usersMock := testutil.NewMockDirectory("users")
	defer usersMock.Close()

	agg := newAggregator(productsMock.URL(), usersMock.URL())

	total := agg.OrderTotal(context.Background(), []int64{1, 2})
	if total != 1450 {
		t.Errorf("OrderTotal = %v, want 1450", total)
	}
}

func TestOrderTotal_FailedProductContributesZero(t *testing.T) {
	productsMock := testutil.NewMockDirectory("products")
	defer productsMock.Close()
	seedProducts(productsMock)
	// Batch path down, and id 2 fails on the per-key path too.
	productsMock.SetBatchStatus(http.StatusInternalServerError)
	productsMock.FailID(2)

	usersMock := testutil.NewMockDirectory("users")
	defer usersMock.Close()

	agg := newAggregator(productsMock.URL(), usersMock.URL())

	total := agg.OrderTotal(context.Background(), []int64{1, 2})
	if total != 1200 {
		t.Errorf("OrderTotal = %v, want 1200 (failed product contributes zero)", total)
	}
}

func TestOrderTotal_DependencyFullyDown(t *testing.T) {
	productsMock := testutil.NewMockDirectory("products")
	productsURL := productsMock.URL()
	productsMock.Close()

	usersMock := testutil.NewMockDirectory("users")
	defer usersMock.Close()

	agg := newAggregator(productsURL, usersMock.URL())

	total := agg.OrderTotal(context.Background(), []int64{1, 2})
	if total != 0 {
		t.Errorf("OrderTotal = %v, want 0 when dependency is down", total)
	}
}

func TestOrderTotal_DuplicateIDsCountPerOccurrence(t *testing.T) {
	productsMock := testutil.NewMockDirectory("products")
	defer productsMock.Close()
	seedProducts(productsMock)

	usersMock := testutil.NewMockDirectory("users")
	defer usersMock.Close()

	agg := newAggregator(productsMock.URL(), usersMock.URL())

	total := agg.OrderTotal(context.Background(), []int64{2, 2})
	if total != 500 {
		t.Errorf("OrderTotal = %v, want 500 (250 per occurrence)", total)
	}
}
