package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"epic_quiz_client/internal/cache"
	"epic_quiz_client/internal/config"
	"epic_quiz_client/internal/gateway"
	"epic_quiz_client/internal/service"
	"epic_quiz_client/internal/session"
	"epic_quiz_client/pkg/database"
	"epic_quiz_client/pkg/logger"
	"epic_quiz_client/pkg/monitoring"
	"epic_quiz_client/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type App struct {
	Config          *config.Config
	Quiz            *service.QuizService
	Router          *gin.Engine
	configCallbacks []func(*config.Config)
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新入口（configwatcher 调用）
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
	logger.Log.Info("configuration reloaded")
}

// NewApp 组装全部组件。任何远端依赖失败都只降级：
// 主库连不上就只剩 REST 回退，缓存打不开就全部按 miss 处理。
// 离线优先的进程不允许因为网络把自己启动死。
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	var providers []gateway.Provider

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Warn("primary data service unavailable, REST fallback only", zap.Error(err))
	} else {
		providers = append(providers, gateway.NewPrimaryProvider(db))
	}

	restProvider := gateway.NewRESTProvider(
		cfg.API.BaseURL,
		cfg.API.Timeout,
		cfg.API.MaxRequests,
		time.Duration(cfg.API.WindowMinutes)*time.Minute,
	)
	providers = append(providers, restProvider)

	cacheDB, err := database.InitCacheDB(cfg.Cache.Path)
	if err != nil {
		logger.Log.Warn("offline cache unavailable, all lookups degrade to miss", zap.Error(err))
		cacheDB = nil
	}
	store := cache.NewStore(cacheDB)

	gw := gateway.New(providers...)
	gw.EpicListTTL = cfg.Cache.EpicListTTL

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Warn("redis unavailable, epic list memo disabled", zap.Error(err))
		} else {
			gw.Redis = rdb
		}
	}

	monitoring.Init()

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("epic-quiz-client", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		}
	}

	engine := session.NewEngine()
	quiz := service.NewQuizService(gw, store, engine, cfg)

	app := &App{
		Config: cfg,
		Quiz:   quiz,
	}
	app.RegisterConfigCallback(func(c *config.Config) {
		quiz.Cfg = c
	})

	if cfg.Server.MetricsAddr != "" {
		if cfg.Server.Mode != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := gin.New()
		router.Use(gin.Recovery())
		router.GET("/metrics", monitoring.PrometheusHandler())
		router.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":        "ok",
				"content_fresh": quiz.IsContentFresh(),
				"last_sync":     store.LastSync(),
			})
		})
		app.Router = router
	}

	return app
}

func (a *App) Run() {
	if a.Config.ForceRefresh {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		epics, err := a.Quiz.LoadEpics(ctx)
		if err != nil {
			logger.Log.Warn("forced refresh: epic list unavailable", zap.Error(err))
		} else {
			ids := make([]string, 0, len(epics))
			for _, e := range epics {
				ids = append(ids, e.ID)
			}
			if err := a.Quiz.RefreshContent(ctx, ids...); err != nil {
				logger.Log.Warn("forced refresh failed", zap.Error(err))
			}
		}
		cancel()
	}

	var srv *http.Server
	if a.Router != nil {
		srv = &http.Server{
			Addr:    a.Config.Server.MetricsAddr,
			Handler: a.Router,
		}
		go func() {
			log.Printf("Debug listener on %s", a.Config.Server.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("listen: %s\n", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatal("Forced to shutdown:", err)
		}
	}

	log.Println("Exiting")
}
