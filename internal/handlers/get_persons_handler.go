package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetPersons returns one page of non-expired reports, newest first.
func (h *PersonsHandler) GetPersons(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	listed, err := h.service.List(c.Request.Context(), page, size)
	if err != nil {
		h.logger.Errorw("failed to list persons", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list persons"})
		return
	}

	c.JSON(http.StatusOK, listed)
}
