package router

import (
	"net/http"

	"budget/api"
	"budget/config"
	_ "budget/docs"
	"budget/middleware"
	"budget/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, db *gorm.DB, logger *logrus.Logger) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(CORSMiddleware())

	// 服务
	users := service.NewUserService(db)
	categories := service.NewCategoryService(db)
	ledger := service.NewLedgerService(db, categories)
	reports := service.NewReportService(db, cfg.Report)
	dashboard := service.NewDashboardService(reports, ledger)
	email := service.NewEmailService(&cfg.Email)

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiGroup := r.Group("/api")
	{
		authHandler := api.NewAuthHandler(cfg, users)
		auth := apiGroup.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login",
				middleware.LoginRateLimit(cfg.RateLimit.LoginAttempts, cfg.RateLimit.LoginWindow()),
				authHandler.Login)
		}

		// 需要 JWT 认证的路由
		authorized := apiGroup.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.GetProfile)

			categoryHandler := api.NewCategoryHandler(categories)
			cats := authorized.Group("/categories")
			{
				cats.GET("", categoryHandler.List)
				cats.POST("", categoryHandler.Create)
				cats.PUT("/:id", categoryHandler.Update)
				cats.DELETE("/:id", categoryHandler.Delete)
			}

			transactionHandler := api.NewTransactionHandler(ledger)
			txs := authorized.Group("/transactions")
			{
				txs.GET("", transactionHandler.List)
				txs.POST("", transactionHandler.Create)
				txs.GET("/:id", transactionHandler.Get)
				txs.PUT("/:id", transactionHandler.Update)
				txs.DELETE("/:id", transactionHandler.Delete)
			}

			dashboardHandler := api.NewDashboardHandler(dashboard)
			authorized.GET("/dashboard", dashboardHandler.Get)
			authorized.GET("/dashboard/weekly", dashboardHandler.Weekly)

			reportHandler := api.NewReportHandler(reports, users, email)
			rep := authorized.Group("/reports")
			{
				rep.GET("/summary", reportHandler.Summary)
				rep.GET("/category-spending", reportHandler.CategorySpending)
				rep.GET("/transactions", reportHandler.Transactions)
				rep.GET("/daily", reportHandler.Daily)
				rep.GET("/budget", reportHandler.Budget)
				rep.GET("/export", reportHandler.Export)
				rep.POST("/email", reportHandler.Email)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = "database unavailable"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
