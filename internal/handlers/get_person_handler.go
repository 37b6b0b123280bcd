package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.missingpersonalert/internal/persons"
)

// GetPerson returns a single report decorated with a resolved location name.
// Resolution degrades internally; this endpoint only fails for unknown ids.
func (h *PersonsHandler) GetPerson(c *gin.Context) {
	id := c.Param("id")

	person, err := h.service.Get(c.Request.Context(), id)
	if errors.Is(err, persons.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Person not found"})
		return
	}
	if err != nil {
		h.logger.Errorw("failed to load person", "person_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load person"})
		return
	}

	locationName := h.resolver.Resolve(c.Request.Context(), person.LastSeenLatitude, person.LastSeenLongitude)

	response := gin.H{"person": person}
	if locationName != "" {
		response["locationName"] = locationName
	}
	c.JSON(http.StatusOK, response)
}
