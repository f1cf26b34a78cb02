package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/partslink/backend/internal/config"
	"github.com/partslink/backend/internal/db"
	"github.com/partslink/backend/internal/http/handlers"
	"github.com/partslink/backend/internal/http/middleware"

	_ "github.com/partslink/backend/docs"
)

func Router(cfg config.Config, store *db.Store, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Admin-User", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Validator: validator.New(),
		Logger:    logger,
		AdminKey:  cfg.AdminKey,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/customers", h.CustomersList)
		api.GET("/customers/:id", h.CustomerDetails)
		api.GET("/transactions", h.TransactionsList)
		api.GET("/transactions/:id", h.TransactionDetails)
		api.GET("/uploads", h.UploadsList)
		api.GET("/dashboard/summary", h.Dashboard)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/upload/sales", h.UploadSales)
		admin.POST("/upload/stock", h.UploadStock)
		admin.GET("/templates/sales", h.SalesTemplate)
		admin.GET("/templates/stock", h.StockTemplate)
		admin.POST("/customers", h.CreateCustomer)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
