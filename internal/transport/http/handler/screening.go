package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pneumascan/internal/app"
	"pneumascan/internal/transport/http/response"
)

// ScreeningHandler accepts X-ray uploads and returns the screening payload.
type ScreeningHandler struct {
	service     *app.ScreeningService
	maxUploadSz int64
	log         *zap.Logger
}

func NewScreeningHandler(service *app.ScreeningService, maxUploadBytes int64, log *zap.Logger) *ScreeningHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 5 << 20
	}
	return &ScreeningHandler{
		service:     service,
		maxUploadSz: maxUploadBytes,
		log:         log,
	}
}

// Predict handles a multipart form with field "imagefile" (required) and
// optional "latitude"/"longitude" decimal-degree fields.
func (h *ScreeningHandler) Predict(c *gin.Context) {
	file, err := c.FormFile("imagefile")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no image uploaded (form field 'imagefile')")
		return
	}

	if file.Size > h.maxUploadSz {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "image too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to open uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to read image")
		return
	}

	lat, ok := parseOptionalFloat(c, "latitude")
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "latitude is not a number")
		return
	}
	lon, ok := parseOptionalFloat(c, "longitude")
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "longitude is not a number")
		return
	}

	result, err := h.service.Screen(c.Request.Context(), app.ScreenInput{
		Filename:  file.Filename,
		Data:      data,
		Latitude:  lat,
		Longitude: lon,
	})
	if err != nil {
		if isValidationError(err) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		h.log.Error("screening failed", zap.String("filename", file.Filename), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "error processing image")
		return
	}

	response.OK(c, result)
}

func isValidationError(err error) bool {
	return errors.Is(err, app.ErrNoFilename) ||
		errors.Is(err, app.ErrUnsupportedFormat) ||
		errors.Is(err, app.ErrNotGrayscale) ||
		errors.Is(err, app.ErrInvalidImage) ||
		errors.Is(err, app.ErrBadCoordinates)
}

// parseOptionalFloat returns (nil, true) when the form field is absent and
// (nil, false) when it is present but not a valid float.
func parseOptionalFloat(c *gin.Context, field string) (*float64, bool) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return nil, true
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}
