// Package api 組裝 HTTP 路由與服務依賴。
package api

import (
	"context"
	"net/http"
	"time"

	chatHandler "home-chef-ai/internal/api/handlers/chat"
	"home-chef-ai/internal/api/handlers/health"
	lineHandler "home-chef-ai/internal/api/handlers/line"
	"home-chef-ai/internal/api/handlers/pantry"
	"home-chef-ai/internal/api/middleware"
	"home-chef-ai/internal/core/ai/cache"
	aiService "home-chef-ai/internal/core/ai/service"
	chatService "home-chef-ai/internal/core/chat"
	"home-chef-ai/internal/core/dispatch"
	"home-chef-ai/internal/core/intent"
	"home-chef-ai/internal/core/scraper"
	"home-chef-ai/internal/infrastructure/config"
	"home-chef-ai/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 單一請求的超時上限（模型呼叫加試算表往返）
	timeoutDuration = 60 * time.Second
	// 請求體大小限制 (1MB)；聊天與 REST 都是小 JSON
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, store dispatch.RecordStore) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	router.Use(middleware.Deduplication(cfg))

	// 請求超時
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
			})
			c.Abort()
		}
	})

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("model", cfg.OpenRouter.Model),
	)

	// 服務組裝：模型 → 解讀器，儲存 → 分派器，兩者合成聊天服務
	model := aiService.NewService(context.Background(), cfg)
	interpreter := intent.NewInterpreter(model)
	dispatcher := dispatch.NewDispatcher(store, cfg.Sheets.IngredientsSheet, cfg.Sheets.RecipesSheet)
	chatSvc := chatService.NewService(interpreter, dispatcher)

	// 擷取結果以網址為鍵快取，跟模型快取分開
	var clipStore cache.Store
	if cfg.Cache.Enabled {
		clipStore = cache.NewMemoryStore(cfg.Cache.MaxSize, cfg.Cache.CleanupInterval)
	}
	clipScraper := scraper.NewScraper(model, clipStore, cfg.Cache.TTL)

	// 健康檢查路由
	router.GET("/health", health.Check(cfg))
	router.GET("/ready", health.Readiness)
	router.GET("/live", health.Liveness)

	// API 路由組
	api := router.Group("/api/v1")
	{
		api.POST("/chat", chatHandler.NewHandler(chatSvc).Handle)

		pantryHandler := pantry.NewHandler(dispatcher)
		api.GET("/ingredients", pantryHandler.ListIngredients)
		api.POST("/ingredients", pantryHandler.AddIngredient)
		api.PUT("/ingredients/:name", pantryHandler.UpdateIngredient)
		api.DELETE("/ingredients/:name", pantryHandler.DeleteIngredient)

		recipeHandler := pantry.NewRecipeHandler(dispatcher, clipScraper)
		api.GET("/recipes", recipeHandler.ListRecipes)
		api.POST("/recipes", recipeHandler.AddRecipe)
		api.GET("/recipes/search", recipeHandler.SearchRecipes)
		api.PUT("/recipes/:name", recipeHandler.UpdateRecipe)
		api.DELETE("/recipes/:name", recipeHandler.DeleteRecipe)
		api.POST("/recipes/clip", recipeHandler.ClipRecipe)

		// LINE webhook 只在憑證齊全時註冊
		if cfg.Line.ChannelSecret != "" && cfg.Line.ChannelToken != "" {
			api.POST("/line/webhook", lineHandler.NewHandler(cfg, chatSvc).Handle)
			common.LogInfo("LINE webhook enabled")
		}
	}

	common.LogInfo("Router setup completed")
	return router, nil
}
