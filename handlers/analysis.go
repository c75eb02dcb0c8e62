package handlers

import (
	"io"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/saakshipatel/moments/vision"
)

// AnalysisHandler exposes the vision service to the upload pipeline.
type AnalysisHandler struct {
	vision         *vision.Service
	maxUploadBytes int64
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(visionService *vision.Service, maxUploadMB int) *AnalysisHandler {
	return &AnalysisHandler{
		vision:         visionService,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// GenerateAltText returns a human-readable description of the uploaded image.
func (h *AnalysisHandler) GenerateAltText(c *gin.Context) {
	content, ok := h.readImage(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"alt_text": h.vision.GenerateAltText(c.Request.Context(), content),
	})
}

// DetectObjects returns the deduplicated tag list for search indexing.
func (h *AnalysisHandler) DetectObjects(c *gin.Context) {
	content, ok := h.readImage(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tags": h.vision.DetectObjects(c.Request.Context(), content),
	})
}

// GetDetailedAnalysis returns the combined analysis record.
func (h *AnalysisHandler) GetDetailedAnalysis(c *gin.Context) {
	content, ok := h.readImage(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.vision.GetDetailedAnalysis(c.Request.Context(), content))
}

// readImage extracts the uploaded image bytes from the multipart form
// field "image". It writes the error response itself and returns ok=false
// when the upload is missing, oversized, or unreadable.
func (h *AnalysisHandler) readImage(c *gin.Context) ([]byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		log.Warnf("Invalid image upload: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or oversized image file"})
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Errorf("Failed to open uploaded image: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image file"})
		return nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		log.Errorf("Failed to read uploaded image: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image file"})
		return nil, false
	}

	return content, true
}
