package router

import (
	"errors"
	"log"
	"net/http"

	"github.com/baankrua-pos/api/internal/config"
	"github.com/baankrua-pos/api/internal/database"
	"github.com/baankrua-pos/api/internal/handler"
	"github.com/baankrua-pos/api/internal/service"
	"github.com/baankrua-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, // POS terminal dev server
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket route: per-branch order event feed
	r.Get("/ws/branches/{bid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, func(r *http.Request, branchID int64) bool {
			_, err := queries.GetBranch(r.Context(), branchID)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				log.Printf("ERROR: check branch for ws: %v", err)
			}
			return err == nil
		}, w, r)
	})

	// People
	branchHandler := handler.NewBranchHandler(queries)
	r.Route("/branches", branchHandler.RegisterRoutes)

	roleHandler := handler.NewRoleHandler(queries)
	r.Route("/roles", roleHandler.RegisterRoutes)

	employeeHandler := handler.NewEmployeeHandler(queries)
	r.Route("/employees", employeeHandler.RegisterRoutes)

	// Loyalty
	tierHandler := handler.NewTierHandler(queries)
	r.Route("/tiers", tierHandler.RegisterRoutes)

	membershipHandler := handler.NewMembershipHandler(queries)
	r.Route("/memberships", membershipHandler.RegisterRoutes)

	// Catalog
	ingredientHandler := handler.NewIngredientHandler(queries)
	r.Route("/ingredients", ingredientHandler.RegisterRoutes)

	recipeHandler := handler.NewRecipeHandler(queries)
	menuItemHandler := handler.NewMenuItemHandler(queries)
	r.Route("/menu-items", func(r chi.Router) {
		menuItemHandler.RegisterRoutes(r)
		r.Get("/{id}/recipes", recipeHandler.ListForMenuItem)
	})
	r.Route("/recipes", recipeHandler.RegisterRoutes)

	// Stock
	stockHandler := handler.NewStockHandler(queries)
	r.Route("/stock", stockHandler.RegisterRoutes)

	stockService := service.NewStockService(pool, func(db database.DBTX) service.StockStore {
		return database.New(db)
	})
	stockMovementHandler := handler.NewStockMovementHandler(stockService, queries)
	r.Route("/stock-movements", stockMovementHandler.RegisterRoutes)

	// Order workflow
	orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	})
	orderHandler := handler.NewOrderHandler(orderService, queries, hub)
	r.Route("/orders", orderHandler.RegisterRoutes)

	orderItemHandler := handler.NewOrderItemHandler(orderService, queries, hub)
	r.Route("/order-items", orderItemHandler.RegisterRoutes)

	paymentService := service.NewPaymentService(pool, func(db database.DBTX) service.PaymentStore {
		return database.New(db)
	}, service.Policy{
		TaxRate:           cfg.TaxRate,
		PointValue:        cfg.PointValue,
		PointsEarnDivisor: cfg.PointsEarnDivisor,
	})
	paymentHandler := handler.NewPaymentHandler(paymentService, queries, hub)
	r.Route("/payments", paymentHandler.RegisterRoutes)

	log.Println("Router initialized with all handlers")
	return r
}
