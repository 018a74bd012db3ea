package httptransport

import (
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/Davilys/webmarcas1-sub006/internal/auth"
	jwtpkg "github.com/Davilys/webmarcas1-sub006/internal/auth/jwt"
	"github.com/Davilys/webmarcas1-sub006/internal/config"
	"github.com/Davilys/webmarcas1-sub006/internal/health"
	"github.com/Davilys/webmarcas1-sub006/internal/middleware"
	"github.com/Davilys/webmarcas1-sub006/internal/monitoring"
	"github.com/Davilys/webmarcas1-sub006/internal/service"
	"github.com/Davilys/webmarcas1-sub006/internal/websocket"
)

// RouterDependencies dependências do roteador
type RouterDependencies struct {
	Config          *config.Config
	ContractService *service.ContractService
	MailerService   *service.MailerService
	VerifierService *service.VerifierService
	AccountService  *service.MailAccountService
	AdminService    *service.AdminService
	AuthService     *auth.Service
	JWTManager      *jwtpkg.Manager
	WebSocketHub    *websocket.Hub
	Metrics         *monitoring.Metrics
	HealthChecker   *health.HealthChecker
	Logger          *zap.Logger
}

// NewRouter cria e devolve a instância do roteador Gin
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	mon := middleware.NewMonitoringMiddleware(deps.Metrics, deps.Logger)

	// Middlewares globais
	router.Use(mon.PanicRecovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.ErrorHandler(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(mon.HTTPMetrics())
	router.Use(mon.RateLimitMetrics())

	// Limite global do corpo da requisição
	router.Use(middleware.BodySizeLimit(middleware.DefaultBodyLimit))

	// CORS
	corsConfig := gincors.Config{
		AllowOrigins: deps.Config.CORS.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"X-Max-Body-Size",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// Com origem curinga o suporte a credenciais precisa ser desligado
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	// Handlers
	contractHandler := NewContractHandler(deps.ContractService, deps.Config.Contract.PublicBaseURL, deps.Logger)
	mailHandler := NewMailHandler(deps.MailerService, deps.VerifierService, deps.Logger)
	accountHandler := NewAccountHandler(deps.AccountService, deps.Logger)
	adminHandler := NewAdminHandler(deps.AdminService, deps.Logger)
	authHandler := NewAuthHandler(deps.AuthService, deps.JWTManager, deps.Logger)

	// Middlewares de autenticação e vazão
	jwtAuth := middleware.NewJWTAuth(deps.JWTManager, deps.Logger)
	adminAuth := middleware.NewAdminAuth(deps.AuthService)
	publicRateLimit := middleware.NewRateLimiter(
		deps.Config.RateLimit.RequestsPerMinute,
		deps.Config.RateLimit.Burst,
	)

	// Documentação Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Saúde e métricas
	if deps.HealthChecker != nil {
		router.GET("/health", gin.WrapF(deps.HealthChecker.LiveEndpoint))
		router.GET("/health/live", gin.WrapF(deps.HealthChecker.LiveEndpoint))
		router.GET("/health/ready", gin.WrapF(deps.HealthChecker.ReadyEndpoint))
	} else {
		router.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})
	}
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.HTTPHandler()))
	}

	// API V1
	v1 := router.Group("/v1")
	{
		// ========== Rotas públicas (página de assinatura) ==========
		publicRoutes := v1.Group("/public")
		publicRoutes.Use(publicRateLimit.Handler())
		{
			publicRoutes.POST("/contracts/resolve", contractHandler.Resolve)
			publicRoutes.POST("/contracts/sign",
				middleware.BodySizeLimit(middleware.SignatureBodyLimit),
				contractHandler.Sign)
		}

		// ========== Autenticação ==========
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh", authHandler.Refresh)
			authRoutes.GET("/me", jwtAuth.RequireAuth(), authHandler.Me)
			authRoutes.POST("/change-password", jwtAuth.RequireAuth(), authHandler.ChangePassword)
		}

		// ========== WebSocket ==========
		if deps.WebSocketHub != nil {
			v1.GET("/ws", websocket.HandleWebSocket(deps.WebSocketHub))
		}

		// ========== Envio e verificação de email ==========
		mailRoutes := v1.Group("/mail")
		mailRoutes.Use(jwtAuth.RequireAuth(), adminAuth.RequireAdmin())
		{
			mailRoutes.POST("/send", mailHandler.Send)
			mailRoutes.POST("/verify-smtp", mailHandler.VerifySMTP)
		}

		// ========== Rotas administrativas ==========
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(jwtAuth.RequireAuth())
		{
			// Contratos
			adminRoutes.POST("/contracts", contractHandler.Create)
			adminRoutes.GET("/contracts", contractHandler.List)
			adminRoutes.GET("/contracts/:id", contractHandler.Get)
			adminRoutes.GET("/contracts/:id/audit", contractHandler.Audit)

			// Contas de envio (exige administrador)
			adminRoutes.POST("/accounts", adminAuth.RequireAdmin(), accountHandler.Create)
			adminRoutes.GET("/accounts", adminAuth.RequireAdmin(), accountHandler.List)
			adminRoutes.GET("/accounts/:id", adminAuth.RequireAdmin(), accountHandler.Get)
			adminRoutes.PATCH("/accounts/:id", adminAuth.RequireAdmin(), accountHandler.Update)
			adminRoutes.POST("/accounts/:id/set-default", adminAuth.RequireAdmin(), accountHandler.SetDefault)
			adminRoutes.DELETE("/accounts/:id", adminAuth.RequireAdmin(), accountHandler.Delete)

			// Usuários do painel (exige administrador)
			adminRoutes.POST("/users", adminAuth.RequireAdmin(), adminHandler.CreateUser)
			adminRoutes.GET("/users", adminAuth.RequireAdmin(), adminHandler.ListUsers)
			adminRoutes.PATCH("/users/:id/active", adminAuth.RequireAdmin(), adminHandler.SetUserActive)
		}
	}

	return router
}
