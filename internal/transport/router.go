package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/twig/internal/domain/event"
	porteventbus "github.com/alanyang/twig/internal/port/eventbus"
	promptsvc "github.com/alanyang/twig/internal/service/prompt"

	mcptransport "github.com/alanyang/twig/internal/transport/mcp"
	prompthandler "github.com/alanyang/twig/internal/transport/prompt"
	wshandler "github.com/alanyang/twig/internal/transport/ws"
)

func NewRouter(
	ctx context.Context,
	promptSvc *promptsvc.Service,
	mcpSrv *mcptransport.Server,
	eventBus porteventbus.EventBus,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api")
	prompthandler.Register(api.Group("/prompts"), promptSvc)

	hub := wshandler.NewHub()
	hub.Register(api.Group("/ws"))

	if mcpSrv != nil {
		h := gin.WrapH(mcpSrv.Handler())
		r.GET("/mcp", h)
		r.POST("/mcp", h)
		r.DELETE("/mcp", h)
	}

	// Bridge: every registry event is forwarded to WS clients; event.Type in
	// the payload lets the client filter.
	if eventBus != nil {
		if _, err := eventBus.Subscribe(ctx, event.ChannelRegistry, func(_ context.Context, e event.Event) {
			hub.Broadcast(e)
		}); err != nil {
			slog.Error("failed to subscribe registry channel to WS hub", "error", err)
		}
		go func() {
			<-ctx.Done()
			hub.Close()
		}()
	}

	return r
}
