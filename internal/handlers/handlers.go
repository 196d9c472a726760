package handlers

import (
	"errors"
	"net/http"

	"github.com/agrovision/riceleaf-api/internal/advice"
	"github.com/agrovision/riceleaf-api/internal/classify"
	"github.com/agrovision/riceleaf-api/internal/history"
	"github.com/agrovision/riceleaf-api/internal/imaging"
	"github.com/agrovision/riceleaf-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	runtime  *model.Runtime
	pipeline *classify.Service
	store    *history.Store
	log      *zap.Logger
}

func New(runtime *model.Runtime, pipeline *classify.Service, store *history.Store, log *zap.Logger) *Handler {
	return &Handler{
		runtime:  runtime,
		pipeline: pipeline,
		store:    store,
		log:      log,
	}
}

func (h *Handler) Health(c *gin.Context) {
	state := h.runtime.State()
	resp := gin.H{
		"status": "ok",
		"model":  state.String(),
	}
	if state == model.StateReady {
		meta := h.runtime.Metadata()
		resp["model_version"] = meta.Version
		resp["classes"] = len(meta.Classes)
	}
	c.JSON(http.StatusOK, resp)
}

// Classify runs the full pipeline over an uploaded image and returns
// the diagnosis plus treatment advice.
func (h *Handler) Classify(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no image file provided, use 'image' as the form field name"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds the 10MB upload limit"})
		return
	}

	diagnosis, err := h.pipeline.Classify(c.Request.Context(), file)
	if err != nil {
		h.fail(c, err)
		return
	}

	recommendation := advice.For(diagnosis.Label)

	if err := h.store.Append(history.Entry{
		ImageName:  header.Filename,
		Label:      diagnosis.Label,
		Confidence: diagnosis.Confidence,
		Advice:     recommendation,
	}); err != nil {
		// History is best-effort; the diagnosis itself succeeded.
		h.log.Warn("failed to record history entry", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"label":      diagnosis.Label,
		"confidence": diagnosis.Confidence,
		"advice":     recommendation,
	})
}

type tensorRequest struct {
	Image []float32 `json:"image"`
}

// ClassifyTensor accepts a pre-encoded input tensor and skips the
// image stages of the pipeline.
func (h *Handler) ClassifyTensor(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req tensorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	if want := h.runtime.Metadata().InputLength(); len(req.Image) != want {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "tensor length mismatch",
			"want":  want,
			"got":   len(req.Image),
		})
		return
	}

	scores, err := h.runtime.Run(req.Image)
	if err != nil {
		h.fail(c, err)
		return
	}

	labels := h.runtime.Labels()
	diagnosis, err := classify.Interpret(scores, labels)
	if err != nil {
		h.fail(c, err)
		return
	}

	perClass := make(map[string]float32, len(labels))
	for i, label := range labels {
		perClass[label] = scores[i]
	}

	c.JSON(http.StatusOK, gin.H{
		"label":      diagnosis.Label,
		"confidence": diagnosis.Confidence,
		"scores":     perClass,
	})
}

func (h *Handler) History(c *gin.Context) {
	entries, err := h.store.Recent()
	if err != nil {
		h.log.Error("failed to read history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// ready gates inference endpoints on the model lifecycle state.
// Requests issued before load completion are rejected, not queued.
func (h *Handler) ready(c *gin.Context) bool {
	switch h.runtime.State() {
	case model.StateReady:
		return true
	case model.StateFailed:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model failed to load, inference is unavailable"})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model is still loading, try again shortly"})
	}
	return false
}

// fail maps pipeline errors onto HTTP statuses. No partial diagnosis
// is ever surfaced.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, imaging.ErrImageDecode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not decode image, supported formats are JPEG, PNG and WebP"})
	case errors.Is(err, model.ErrNotReady):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model is not ready"})
	default:
		h.log.Error("classification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not analyze image"})
	}
}
