package http

import (
	"context"
	stdhttp "net/http"
	"slices"

	"github.com/dkeye/Duel/internal/adapters/signal"
	"github.com/dkeye/Duel/internal/app"
	"github.com/dkeye/Duel/internal/app/orch"
	"github.com/dkeye/Duel/internal/config"
	"github.com/dkeye/Duel/internal/core"
	"github.com/dkeye/Duel/internal/domain"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const clientTokenKey = "client_token"

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware keeps a stable per-browser token in the cookie
// session. It identifies a client across sockets in logs; it is never used
// as a participant id.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		token, _ := s.Get(clientTokenKey).(string)
		if token == "" {
			token = genClientToken()
			s.Set(clientTokenKey, token)
			if err := s.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

// OriginChecker returns the WebSocket origin check matching the CORS list.
// Requests without an Origin header (non-browser clients) are accepted.
func OriginChecker(cfg config.CORSConfig) func(*stdhttp.Request) bool {
	allowAll := cfg.AllowAll()
	return func(r *stdhttp.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowAll || slices.Contains(cfg.AllowedOrigins, origin)
	}
}

func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}
	if cfg.AllowAll() {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.AllowedOrigins
		cc.AllowCredentials = true
	}
	return cors.New(cc)
}

func SetupRouter(ctx context.Context, cfg *config.Config, coord *orch.Coordinator, reg *app.Registry) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.CORS))

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("DuelSessions", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, gin.H{"status": "ok"})
	})

	ctrl := signal.NewSignalWSController(coord, reg, cfg.Signal, OriginChecker(cfg.CORS))

	api := r.Group("/api")

	api.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, gin.H{"rooms": coord.Rooms()})
	})

	api.GET("/rooms/:id", func(c *gin.Context) {
		info, ok := coord.Room(domain.RoomID(c.Param("id")))
		if !ok {
			c.JSON(stdhttp.StatusNotFound, gin.H{"error": core.MsgRoomNotFound})
			return
		}
		c.JSON(stdhttp.StatusOK, info)
	})

	api.GET("/stats", func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, gin.H{
			"rooms":       coord.RoomCount(),
			"connections": reg.Len(),
		})
	})

	log.Info().Str("module", "adapters.http").Strs("origins", cfg.CORS.AllowedOrigins).Msg("router setup")
	return r
}
