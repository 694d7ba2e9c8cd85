package prompt

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	promptsvc "github.com/alanyang/twig/internal/service/prompt"
)

// Register mounts the prompt REST endpoints on the given router group.
// [SRP] HTTP handler only; calls promptSvc for all business logic.
func Register(rg *gin.RouterGroup, svc *promptsvc.Service) {
	rg.GET("", listPrompts(svc))
	rg.POST("/reload", reloadPrompts(svc))
	rg.POST("/:name/render", renderPrompt(svc))
}

func listPrompts(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.ListPrompts())
	}
}

type renderReq struct {
	Arguments map[string]any `json:"arguments"`
}

func renderPrompt(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req renderReq
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := svc.GetPrompt(c.Request.Context(), c.Param("name"), req.Arguments)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func reloadPrompts(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		names, err := svc.Reload(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"loaded": names})
	}
}

func writeError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error(), "kind": promptsvc.KindOf(err).String()}
	var e *promptsvc.Error
	if errors.As(err, &e) && e.Argument != "" {
		body["argument"] = e.Argument
	}
	c.JSON(statusFor(promptsvc.KindOf(err)), body)
}

func statusFor(k promptsvc.Kind) int {
	switch k {
	case promptsvc.KindNotFound:
		return http.StatusNotFound
	case promptsvc.KindMissingArgument:
		return http.StatusBadRequest
	case promptsvc.KindRender:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
