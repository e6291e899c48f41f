package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/baankrua-pos/api/internal/database"
	"github.com/baankrua-pos/api/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type mockMenuItemStore struct {
	listMenuItemsFn  func(ctx context.Context, arg database.ListMenuItemsParams) ([]database.MenuItem, error)
	getMenuItemFn    func(ctx context.Context, menuItemID int64) (database.MenuItem, error)
	createMenuItemFn func(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	updateMenuItemFn func(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	deleteMenuItemFn func(ctx context.Context, menuItemID int64) (int64, error)
}

func (m *mockMenuItemStore) ListMenuItems(ctx context.Context, arg database.ListMenuItemsParams) ([]database.MenuItem, error) {
	if m.listMenuItemsFn != nil {
		return m.listMenuItemsFn(ctx, arg)
	}
	return []database.MenuItem{}, nil
}

func (m *mockMenuItemStore) GetMenuItem(ctx context.Context, menuItemID int64) (database.MenuItem, error) {
	if m.getMenuItemFn != nil {
		return m.getMenuItemFn(ctx, menuItemID)
	}
	return database.MenuItem{}, pgx.ErrNoRows
}

func (m *mockMenuItemStore) CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
	if m.createMenuItemFn != nil {
		return m.createMenuItemFn(ctx, arg)
	}
	return database.MenuItem{}, pgx.ErrNoRows
}

func (m *mockMenuItemStore) UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error) {
	if m.updateMenuItemFn != nil {
		return m.updateMenuItemFn(ctx, arg)
	}
	return database.MenuItem{}, pgx.ErrNoRows
}

func (m *mockMenuItemStore) DeleteMenuItem(ctx context.Context, menuItemID int64) (int64, error) {
	if m.deleteMenuItemFn != nil {
		return m.deleteMenuItemFn(ctx, menuItemID)
	}
	return 0, pgx.ErrNoRows
}

func setupMenuItemRouter(store *mockMenuItemStore) *chi.Mux {
	h := handler.NewMenuItemHandler(store)
	r := chi.NewRouter()
	r.Route("/menu-items", h.RegisterRoutes)
	return r
}

func TestMenuItemCreate_HappyPath(t *testing.T) {
	var captured database.CreateMenuItemParams
	store := &mockMenuItemStore{
		createMenuItemFn: func(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
			captured = arg
			return database.MenuItem{
				MenuItemID:  7,
				Name:        arg.Name,
				Type:        arg.Type,
				Price:       arg.Price,
				IsAvailable: arg.IsAvailable,
			}, nil
		},
	}

	router := setupMenuItemRouter(store)
	rr := doRequest(t, router, "POST", "/menu-items", map[string]interface{}{
		"name": "Pad Krapow Moo", "type": "Main", "price": "85", "category": "Stir-fry",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if !captured.IsAvailable {
		t.Errorf("is_available should default to true")
	}
	resp := decodeBody(t, rr)
	if resp["price"] != "85.00" {
		t.Errorf("price: got %v, want 85.00", resp["price"])
	}
}

func TestMenuItemCreate_SetAlwaysAvailable(t *testing.T) {
	var captured database.CreateMenuItemParams
	store := &mockMenuItemStore{
		createMenuItemFn: func(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
			captured = arg
			return database.MenuItem{MenuItemID: 8, Name: arg.Name, Type: arg.Type, Price: arg.Price, IsAvailable: arg.IsAvailable}, nil
		},
	}

	router := setupMenuItemRouter(store)
	rr := doRequest(t, router, "POST", "/menu-items", map[string]interface{}{
		"name": "Lunch Set A", "type": "Set", "price": "199", "is_available": false,
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if !captured.IsAvailable {
		t.Errorf("set menus must be stored as available even when the flag says otherwise")
	}
}

func TestMenuItemCreate_BadPrice(t *testing.T) {
	router := setupMenuItemRouter(&mockMenuItemStore{})

	for _, price := range []string{"", "free", "-10"} {
		rr := doRequest(t, router, "POST", "/menu-items", map[string]interface{}{
			"name": "Pad Krapow Moo", "type": "Main", "price": price,
		})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("price %q: got %d, want %d", price, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestMenuItemList_AvailableFilter(t *testing.T) {
	var captured database.ListMenuItemsParams
	store := &mockMenuItemStore{
		listMenuItemsFn: func(ctx context.Context, arg database.ListMenuItemsParams) ([]database.MenuItem, error) {
			captured = arg
			return []database.MenuItem{}, nil
		},
	}

	router := setupMenuItemRouter(store)
	rr := doRequest(t, router, "GET", "/menu-items?available=true", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if !captured.Available.Valid || !captured.Available.Bool {
		t.Errorf("available filter: got %+v, want true", captured.Available)
	}
}

func TestMenuItemList_BadAvailableFilter(t *testing.T) {
	router := setupMenuItemRouter(&mockMenuItemStore{})
	rr := doRequest(t, router, "GET", "/menu-items?available=maybe", nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestMenuItemDelete_ReferencedConflict(t *testing.T) {
	store := &mockMenuItemStore{
		deleteMenuItemFn: func(ctx context.Context, menuItemID int64) (int64, error) {
			return 0, &pgconn.PgError{Code: "23503"}
		},
	}

	router := setupMenuItemRouter(store)
	rr := doRequest(t, router, "DELETE", "/menu-items/7", nil)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}
