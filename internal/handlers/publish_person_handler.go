package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"io.winapps.missingpersonalert/internal/persons"
)

// PublishPerson handles publishing a new missing-person report from a
// multipart form. Validation failures return 400 with no partial write.
// Notification delivery outcomes never affect the response.
func (h *PersonsHandler) PublishPerson(c *gin.Context) {
	name := c.PostForm("name")

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image file"})
		return
	}

	lat, err := optionalCoordinate(c, "lastSeenLatitude")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lastSeenLatitude"})
		return
	}
	lon, err := optionalCoordinate(c, "lastSeenLongitude")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lastSeenLongitude"})
		return
	}

	upload := persons.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}

	saved, err := h.service.Publish(c.Request.Context(), name, upload, lat, lon)
	if errors.Is(err, persons.ErrInvalidInput) {
		h.logger.Warnw("invalid publish request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Errorw("failed to publish alert", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish alert"})
		return
	}

	h.notifier.NotifyMissingPerson(c.Request.Context(), saved)

	h.logger.Infow("successfully published alert", "person_id", saved.ID)
	c.JSON(http.StatusOK, saved)
}

func optionalCoordinate(c *gin.Context, field string) (*float64, error) {
	raw := c.PostForm(field)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
