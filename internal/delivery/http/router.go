package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/luischz/inventario_ventas/internal/delivery/http/handler"
	"github.com/luischz/inventario_ventas/internal/delivery/http/middleware"
	"github.com/luischz/inventario_ventas/internal/pkg/logger"
)

const requestTimeout = 30 * time.Second

// NewRouter creates and configures the HTTP router
func NewRouter(
	productHandler *handler.ProductHandler,
	saleHandler *handler.SaleHandler,
	reportHandler *handler.ReportHandler,
	allowedOrigins []string,
	log *logger.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/productos", func(r chi.Router) {
			r.Post("/", productHandler.Create)
			r.Get("/", productHandler.List)
			r.Get("/historial/", productHandler.History)
			r.Get("/{id}", productHandler.GetByID)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Deactivate)
		})

		r.Route("/ventas", func(r chi.Router) {
			r.Post("/", saleHandler.Create)
			r.Get("/", saleHandler.List)
			r.Get("/historial/", saleHandler.History)
			r.Get("/{id}", saleHandler.GetByID)
			r.Delete("/{id}", saleHandler.Delete)
		})

		r.Route("/reportes", func(r chi.Router) {
			r.Get("/rango", reportHandler.Range)
			r.Delete("/reiniciar", reportHandler.Reset)
		})
	})

	return r
}
