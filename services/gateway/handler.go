package gateway

import (
	"errors"
	"net/http"

	"licensegate/pkg/config"
	"licensegate/pkg/envelope"
	"licensegate/pkg/errutil"
	"licensegate/pkg/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

type Handler struct {
	svc          *Service
	appName      string
	appVersion   string
	defaultOwner string
}

type HandlerParams struct {
	fx.In
	Config  *config.Config
	Service *Service
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		svc:          p.Service,
		appName:      p.Config.AppName,
		appVersion:   p.Config.AppVersion,
		defaultOwner: p.Config.Gateway.DefaultOwner,
	}
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/connect/:owner", h.Connect)
	r.GET("/connect/:owner", h.Info)

	// un-scoped path kept for single-tenant clients
	if h.defaultOwner != "" {
		r.POST("/connect", h.Connect)
		r.GET("/connect", h.Info)
	}
}

// Info returns static metadata. It reveals nothing about tenants.
func (h *Handler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"web_info": gin.H{
			"_client": h.appName,
			"version": h.appVersion,
		},
	})
}

// Connect redeems a key. Domain rejections of any kind answer 200 with an
// empty object so an unauthenticated caller learns nothing about the key.
func (h *Handler) Connect(c *gin.Context) {
	owner := c.Param("owner")
	if owner == "" {
		owner = h.defaultOwner
	}

	req := Request{
		Owner:   owner,
		Game:    c.PostForm("game"),
		Payload: c.PostForm("payload"),
		Serial:  c.PostForm("serial"),
	}
	if req.Game == "" || req.Payload == "" {
		_ = c.Error(errutil.BadRequest("invalid request", ErrMalformedRequest))
		return
	}

	sealed, err := h.svc.Redeem(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"data": sealed})
	case errors.Is(err, envelope.ErrDecrypt), errors.Is(err, ErrMalformedRequest):
		_ = c.Error(errutil.BadRequest("invalid request", err))
	case errors.Is(err, ErrEncryptionFailed):
		_ = c.Error(errutil.Internal("internal error", err))
	case errors.Is(err, repository.ErrStoreUnavailable):
		_ = c.Error(errutil.ServiceUnavailable("service unavailable", err))
	default:
		c.JSON(http.StatusOK, gin.H{})
	}
}
