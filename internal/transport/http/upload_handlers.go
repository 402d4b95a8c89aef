package http

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UploadHandlers serves the image-upload endpoint. Uploads travel over this
// separate request/response channel; the chat stream only ever sees the
// returned URL string.
type UploadHandlers struct {
	maxBytes int64
	log      *zerolog.Logger
}

// NewUploadHandlers creates upload handlers enforcing the given size cap.
func NewUploadHandlers(maxBytes int64, logger *zerolog.Logger) *UploadHandlers {
	return &UploadHandlers{
		maxBytes: maxBytes,
		log:      logger,
	}
}

// UploadResponse carries the opaque reference the client embeds in a
// subsequent chat message.
type UploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

// Upload accepts a multipart image and returns a data URL for it. Oversized
// uploads are rejected synchronously and never reach the chat stream.
// POST /api/upload
func (h *UploadHandlers) Upload(c *gin.Context) {
	// Hard cap with slack for multipart framing; the per-file limit below is
	// what produces the client-visible rejection.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+64<<10)

	header, err := c.FormFile("image")
	if err != nil {
		h.log.Debug().Err(err).Msg("upload without usable file")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no file uploaded"})
		return
	}

	if header.Size > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: fmt.Sprintf("file exceeds %d byte limit", h.maxBytes),
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("open uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("read uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	// Sniff the content type instead of trusting the client header.
	detected := mimetype.Detect(data)

	imageURL := "data:" + detected.String() + ";base64," + base64.StdEncoding.EncodeToString(data)

	h.log.Debug().Str("mime", detected.String()).Int("size", len(data)).Msg("image uploaded")
	c.JSON(http.StatusOK, UploadResponse{ImageURL: imageURL})
}
