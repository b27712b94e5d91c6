package leads

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/barcelona-partners/voicegw/pkg/logging"
)

// Handler serves the sales team's read-only view over captured leads.
type Handler struct {
	Store  *Store
	Logger logging.Logger
}

func RegisterRoutes(router gin.IRoutes, handler *Handler) {
	router.GET("/leads", handler.HandleList)
	router.GET("/leads/:phone", handler.HandleGet)
}

func (h *Handler) HandleList(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "lead store unavailable"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	leads, err := h.Store.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.Logger.WithError(err).Error("Failed to list leads")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list leads"})
		return
	}
	if leads == nil {
		leads = []Lead{}
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

func (h *Handler) HandleGet(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "lead store unavailable"})
		return
	}
	phone := c.Param("phone")
	lead, err := h.Store.Get(c.Request.Context(), phone)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	if err != nil {
		h.Logger.WithError(err).WithField("phone", phone).Error("Failed to get lead")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get lead"})
		return
	}
	c.JSON(http.StatusOK, lead)
}
