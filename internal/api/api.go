package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stocksmith/shopd/internal/api/handlers"
	"github.com/stocksmith/shopd/internal/api/middleware"
	"github.com/stocksmith/shopd/internal/service"
)

type Services struct {
	Ledger    *service.LedgerService
	Catalog   *service.CatalogService
	Delivery  *service.DeliveryService
	Stocktake *service.StocktakeService
	Forecast  *service.ForecastService
	Orders    *service.OrderService
	Overview  *service.OverviewService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if services == nil {
		return router
	}

	if services.Ledger != nil {
		productHandler := handlers.NewProductHandler(services.Ledger, services.Forecast)
		productGroup := apiGroup.Group("/products")
		{
			productGroup.POST("", productHandler.CreateProduct)
			productGroup.GET("", productHandler.ListProducts)
			productGroup.GET("/:id", productHandler.GetProduct)
			productGroup.PATCH("/:id", productHandler.UpdateProduct)
			productGroup.GET("/:id/quantity", productHandler.GetQuantity)
			productGroup.GET("/:id/forecast", productHandler.GetForecast)
		}
		apiGroup.GET("/categories", productHandler.ListCategories)

		trxGroup := apiGroup.Group("/transactions")
		{
			trxGroup.POST("", productHandler.CreateTransaction)
			trxGroup.POST("/:id/finalize", productHandler.FinalizeTransaction)
			trxGroup.POST("/:id/cancel", productHandler.CancelTransaction)
		}
	}

	if services.Catalog != nil {
		supplierHandler := handlers.NewSupplierHandler(services.Catalog, services.Orders)
		supplierGroup := apiGroup.Group("/suppliers")
		{
			supplierGroup.POST("", supplierHandler.CreateSupplier)
			supplierGroup.GET("/:id", supplierHandler.GetSupplier)
			supplierGroup.GET("/:id/products/:sku", supplierHandler.GetSupplierProduct)
			supplierGroup.POST("/:id/products/:sku/link", supplierHandler.LinkProduct)
			supplierGroup.POST("/:id/refill", supplierHandler.OrderRefill)
		}
		apiGroup.POST("/base_stock_levels", supplierHandler.SetBaseStockLevel)
	}

	if services.Delivery != nil {
		deliveryHandler := handlers.NewDeliveryHandler(services.Delivery)
		deliveryGroup := apiGroup.Group("/deliveries")
		{
			deliveryGroup.POST("", deliveryHandler.CreateDelivery)
			deliveryGroup.GET("/:id", deliveryHandler.GetDelivery)
			deliveryGroup.GET("/:id/items", deliveryHandler.ListItems)
			deliveryGroup.POST("/:id/populate", deliveryHandler.Populate)
			deliveryGroup.POST("/:id/process", deliveryHandler.Process)
		}
	}

	if services.Stocktake != nil {
		stocktakeHandler := handlers.NewStocktakeHandler(services.Stocktake)
		stocktakeGroup := apiGroup.Group("/stocktakes")
		{
			stocktakeGroup.POST("", stocktakeHandler.Initiate)
			stocktakeGroup.GET("/:id", stocktakeHandler.GetStocktake)
			stocktakeGroup.GET("/:id/chunks", stocktakeHandler.ListChunks)
			stocktakeGroup.POST("/:id/chunks/assign", stocktakeHandler.AssignFreeChunk)
			stocktakeGroup.POST("/:id/finalize", stocktakeHandler.Finalize)
		}
		chunkGroup := apiGroup.Group("/stocktake_chunks")
		{
			chunkGroup.GET("/:id/items", stocktakeHandler.ListItems)
			chunkGroup.POST("/:id/finalize", stocktakeHandler.FinalizeChunk)
		}
		apiGroup.PUT("/stocktake_items/:id", stocktakeHandler.RecordCount)
	}

	if services.Orders != nil {
		orderHandler := handlers.NewOrderHandler(services.Orders)
		apiGroup.POST("/orders", orderHandler.OrderFromSupplier)
	}

	if services.Overview != nil {
		overviewHandler := handlers.NewOverviewHandler(services.Overview)
		apiGroup.GET("/stock/overview", overviewHandler.GetOverview)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
