package sheet

import (
	"net/http"

	"github.com/dmitrijs2005/contractorbook/internal/logging"
	"github.com/gin-gonic/gin"
)

// Handler exposes a Service on the web app paths
// /macros/s/<deployment>/exec and /macros/s/<deployment>/dev.
type Handler struct {
	svc        *Service
	deployment string
	logger     logging.Logger
}

func NewHandler(svc *Service, deployment string, logger logging.Logger) *Handler {
	return &Handler{svc: svc, deployment: deployment, logger: logger}
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/macros/s/:deployment", h.checkDeployment)
	for _, mode := range []string{"/exec", "/dev"} {
		g.GET(mode, h.get)
		g.POST(mode, h.post)
	}
}

func (h *Handler) checkDeployment(c *gin.Context) {
	if c.Param("deployment") != h.deployment {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Next()
}

func (h *Handler) get(c *gin.Context) {
	snap, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error(c.Request.Context(), "snapshot failed", "error", err)
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// post always answers 200; failures are reported in the body.
func (h *Handler) post(c *gin.Context) {
	body, err := c.GetRawData()
	if err == nil {
		err = h.svc.Handle(c.Request.Context(), body)
	}
	if err != nil {
		h.logger.Warn(c.Request.Context(), "payload rejected", "error", err)
		c.String(http.StatusOK, "Error: "+err.Error())
		return
	}
	c.String(http.StatusOK, "Success")
}
