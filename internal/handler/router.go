package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// BuildInfo is reported by /health and /version
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// RouterConfig carries everything NewRouter wires
type RouterConfig struct {
	AllowedOrigins string
	Build          BuildInfo
	Logger         *slog.Logger
	Metrics        http.Handler

	Address     *AddressHandler
	Corrections *CorrectionHandler
	Patterns    *PatternHandler
}

// NewRouter sets up the gin engine with every route
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID())
	if cfg.Logger != nil {
		router.Use(RequestLogger(cfg.Logger))
	}

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitOrigins(cfg.AllowedOrigins)
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", requestIDHeader}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "address-resolver",
			"version":    cfg.Build.Version,
			"build_time": cfg.Build.BuildTime,
			"git_commit": cfg.Build.GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    cfg.Build.Version,
			"build_time": cfg.Build.BuildTime,
			"git_commit": cfg.Build.GitCommit,
		})
	})

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Address endpoints
		if cfg.Address != nil {
			apiV1.POST("/address/resolve", cfg.Address.Resolve)
			apiV1.POST("/address/bulk", cfg.Address.ResolveBulk)
		}

		// Learning endpoints
		if cfg.Corrections != nil {
			apiV1.POST("/corrections", cfg.Corrections.Submit)
		}
		if cfg.Patterns != nil {
			apiV1.POST("/patterns/batch", cfg.Patterns.BatchUpsert)
		}
	}

	return router
}

func splitOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
