package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// ServeImage streams a stored report photo from disk.
func (h *PersonsHandler) ServeImage(c *gin.Context) {
	filename := c.Param("filename")

	path := h.service.ImageLocation(filename)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	c.File(path)
}
