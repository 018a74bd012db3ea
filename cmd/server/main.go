package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Davilys/webmarcas1-sub006/internal/auth"
	jwtpkg "github.com/Davilys/webmarcas1-sub006/internal/auth/jwt"
	"github.com/Davilys/webmarcas1-sub006/internal/config"
	"github.com/Davilys/webmarcas1-sub006/internal/health"
	"github.com/Davilys/webmarcas1-sub006/internal/logger"
	"github.com/Davilys/webmarcas1-sub006/internal/monitoring"
	"github.com/Davilys/webmarcas1-sub006/internal/pool"
	"github.com/Davilys/webmarcas1-sub006/internal/service"
	"github.com/Davilys/webmarcas1-sub006/internal/storage"
	"github.com/Davilys/webmarcas1-sub006/internal/storage/hybrid"
	"github.com/Davilys/webmarcas1-sub006/internal/storage/memory"
	httptransport "github.com/Davilys/webmarcas1-sub006/internal/transport/http"
	"github.com/Davilys/webmarcas1-sub006/internal/websocket"
)

// main sobe o serviço de assinatura de contratos: API HTTP, hub websocket,
// pool de auditoria e a varredura periódica de contratos vencidos.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("falha ao carregar a configuração: %v", err))
	}

	// Modo do Gin conforme o ambiente
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	log, err := logger.NewLogger(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		LogFile:     "",
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
		Compress:    true,
	})
	if err != nil {
		panic(fmt.Sprintf("falha ao inicializar o logger: %v", err))
	}
	defer log.Sync()

	log.Info("iniciando o serviço de assinatura",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// Camada de armazenamento: banco + Redis quando configurado, memória
	// para desenvolvimento
	var store storage.Store
	if cfg.Database.Type != "" && cfg.Database.DSN != "" {
		store, err = hybrid.NewStoreWithType(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
		)
		if err != nil {
			panic(fmt.Sprintf("falha ao inicializar o armazenamento: %v", err))
		}
		log.Info("usando armazenamento em banco de dados",
			zap.String("type", cfg.Database.Type),
			zap.String("redis", cfg.Redis.Address),
		)
	} else {
		store = memory.NewStore()
		log.Info("usando armazenamento em memória (modo de desenvolvimento)")
	}
	defer store.Close()

	// Monitoramento
	metrics := monitoring.NewMetrics()
	healthChecker := health.NewHealthChecker(store, log)

	alertManager := monitoring.NewAlertManager(log)
	alertManager.AddReceiver(monitoring.NewLogAlertReceiver(log))
	alertManager.AddRule(monitoring.HighMemoryUsageRule(512.0)) // 512MB
	alertManager.AddRule(monitoring.StorageConnectionRule(store))

	// Pool de workers para a trilha de auditoria assíncrona
	auditPool := pool.NewWorkerPool(cfg.Workers.AuditWorkers, cfg.Workers.AuditQueueSize, log)

	// Hub websocket: painéis autenticados recebem eventos de contrato
	wsHub := websocket.NewHub(cfg.CORS.AllowedOrigins, cfg.JWT.Secret, store, metrics, log)

	// Serviços
	contractService := service.NewContractService(store, store, auditPool, wsHub, log)
	mailerService := service.NewMailerService(store, nil, log)
	verifierService := service.NewVerifierService(log)
	accountService := service.NewMailAccountService(store, log)
	adminService := service.NewAdminService(store, log)

	authService := auth.NewService(store)
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	log.Info("configuração JWT",
		zap.String("issuer", cfg.JWT.Issuer),
		zap.Duration("access_expiry", cfg.JWT.AccessExpiry),
		zap.Duration("refresh_expiry", cfg.JWT.RefreshExpiry),
	)

	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:          cfg,
		ContractService: contractService,
		MailerService:   mailerService,
		VerifierService: verifierService,
		AccountService:  accountService,
		AdminService:    adminService,
		AuthService:     authService,
		JWTManager:      jwtManager,
		WebSocketHub:    wsHub,
		Metrics:         metrics,
		HealthChecker:   healthChecker,
		Logger:          log,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	auditPool.Start(groupCtx)

	// Servidor HTTP
	group.Go(func() error {
		log.Info("iniciando o servidor HTTP", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("erro no servidor HTTP", zap.Error(err))
			return err
		}
		return nil
	})

	// Varredura periódica de contratos com prazo de assinatura vencido
	group.Go(func() error {
		interval := cfg.Contract.ExpirySweepInterval
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info("iniciando a varredura de contratos vencidos", zap.Duration("interval", interval))

		for {
			select {
			case <-groupCtx.Done():
				log.Info("varredura de contratos encerrada")
				return nil
			case <-ticker.C:
				count, err := contractService.MarkExpired(groupCtx)
				if err != nil {
					log.Error("falha ao marcar contratos vencidos", zap.Error(err))
				} else if count > 0 {
					log.Info("contratos marcados como vencidos", zap.Int("count", count))
				}
			}
		}
	})

	// Hub websocket
	group.Go(func() error {
		log.Info("iniciando o hub websocket")
		wsHub.Run(groupCtx)
		return nil
	})

	// Monitoramento de alertas
	group.Go(func() error {
		log.Info("iniciando o monitoramento de alertas")
		alertManager.StartMonitoring(groupCtx, 1*time.Minute)
		return nil
	})

	// Encerramento gracioso
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("sinal de encerramento recebido, finalizando...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("erro ao encerrar o servidor HTTP", zap.Error(err))
		}

		// Drena a fila de auditoria antes de sair
		auditPool.Stop()

		log.Info("servidor finalizado")
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("erro no servidor", zap.Error(err))
	}

	log.Info("servidor encerrado com sucesso")
}
