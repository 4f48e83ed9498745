package server

import (
	"github.com/gin-gonic/gin"

	"github.com/xpanvictor/verbale/internal/config"
	"github.com/xpanvictor/verbale/internal/handlers"
	"github.com/xpanvictor/verbale/pkg/Logger"
)

type Dependencies struct {
	Skill  handlers.Dispatcher
	Logger *Logger.Logger
}

// NewRouter builds the gin engine with the shared middleware and routes.
func NewRouter(cfg *config.Settings, dep Dependencies) *gin.Engine {
	if !cfg.Debug && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(handlers.RequestLoggerMiddleware(dep.Logger), handlers.ErrorHandlerMiddleware(dep.Logger))
	InitializeRoutes(cfg, r, dep)
	return r
}

func InitializeRoutes(cfg *config.Settings, r *gin.Engine, dep Dependencies) {
	sh := handlers.NewSkillHandler(dep.Skill, dep.Logger)
	r.GET("/health", sh.Health)

	skillGroup := r.Group("/skill")
	if cfg.Skill.JWTSecret != "" {
		skillGroup.Use(handlers.AuthMiddleware(cfg.Skill.JWTSecret, dep.Logger))
	} else {
		dep.Logger.Warn("skill.jwt_secret not set, /skill accepts unauthenticated requests")
	}
	skillGroup.POST("", sh.HandleRequest)
}
