package bootstrap

import (
	apihttp "github.com/cha-ryne/ratings-sync/internal/api/http"
	"github.com/cha-ryne/ratings-sync/internal/api/http/middleware"
	ratingshttp "github.com/cha-ryne/ratings-sync/internal/ratings/http"
	"github.com/cha-ryne/ratings-sync/internal/ratings/session"
	"github.com/cha-ryne/ratings-sync/internal/ratings/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	Redis          *redis.Client
	Store          *store.Store
	Session        *session.Session
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(dep.AllowedOrigins) == 1 && dep.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = dep.AllowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-Request-Id")
	r.Use(cors.New(corsCfg))

	healthHandler := apihttp.NewHealthHandler(dep.ServiceName, dep.Version, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RequestIDMiddleware())

	ratingsHandler := ratingshttp.New(dep.Store, dep.Session)
	ratingsHandler.Register(api)

	return r
}
