package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	handler "reconciliation-portal/internal/handlers"
	"reconciliation-portal/internal/metrics"
)

// Options tune the development server's routes.
type Options struct {
	PublicURL string
	Logger    *slog.Logger
}

func RegisterRoutes(r *gin.Engine, store *handler.MemoryStore, opts Options) {
	reconHandler := handler.NewReconciliationHandler(store, opts.PublicURL, opts.Logger)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")

	// Health check
	api.GET("/health", reconHandler.Health)

	// Reconciliation task routes
	recon := api.Group("/reconciliation")
	recon.GET("/upload", reconHandler.IssueUploadEndpoints)
	recon.POST("", reconHandler.CreateTask)

	summary := recon.Group("/summary")
	summary.GET("/list", reconHandler.ListSummaries)
	summary.GET("/:task_id/transaction", reconHandler.ListTransactions)
	summary.GET("/:task_id/bank", reconHandler.ListBankEntries)

	// Upload targets issued by /reconciliation/upload
	api.POST("/uploads/:task_id/:file", reconHandler.ReceiveUpload)
}

// NewRouter builds a gin engine with request metrics and every route registered.
func NewRouter(store *handler.MemoryStore, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), metrics.Middleware())
	RegisterRoutes(r, store, opts)
	return r
}
