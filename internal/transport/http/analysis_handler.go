package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"finsight/internal/ai"
	apierrors "finsight/internal/errors"
	"finsight/pkg/contracts/domain"
)

// AnalysisService is the service surface the handler depends on.
type AnalysisService interface {
	AnalyzeFile(ctx context.Context, path string, info domain.FileInfo) *domain.AnalysisResult
	Get(id string) (*domain.AnalysisResult, bool)
	Query(ctx context.Context, id string, persona ai.Persona, question string) (ai.Answer, bool)
}

// AnalysisHandler serves workbook uploads, stored analyses and persona
// queries.
type AnalysisHandler struct {
	service        AnalysisService
	uploadsDir     string
	maxUploadBytes int64
	validate       *validator.Validate
	errorHandler   *apierrors.ErrorHandler
	logger         *slog.Logger
}

// NewAnalysisHandler creates the handler.
func NewAnalysisHandler(service AnalysisService, uploadsDir string, maxUploadBytes int64, logger *slog.Logger) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		service:        service,
		uploadsDir:     uploadsDir,
		maxUploadBytes: maxUploadBytes,
		validate:       validator.New(),
		errorHandler:   apierrors.NewErrorHandler(logger),
		logger:         logger,
	}
}

// RegisterRoutes registers analysis routes on the router.
func (h *AnalysisHandler) RegisterRoutes(r chi.Router) {
	r.Route("/analyses", func(r chi.Router) {
		r.Post("/", h.CreateAnalysis)
		r.Get("/{analysisID}", h.GetAnalysis)
		r.Post("/{analysisID}/query", h.QueryAnalysis)
	})
}

// CreateAnalysis accepts a multipart workbook upload, runs the analysis
// pipeline and returns the stored result. Unusable workbook contents do
// not fail the request; the pipeline degrades internally.
func (h *AnalysisHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			h.errorHandler.HandleError(w, r, apierrors.ErrUploadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r,
			apierrors.ErrValidation("file", "multipart field 'file' is required"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xlsm" {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnsupportedFile)
		return
	}

	path := filepath.Join(h.uploadsDir, uuid.New().String()+ext)
	if err := h.saveUpload(file, path); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("upload", err))
		return
	}
	defer os.Remove(path)

	info := domain.FileInfo{
		Filename:   header.Filename,
		SizeBytes:  header.Size,
		UploadedAt: time.Now().UTC(),
	}

	h.logger.InfoContext(ctx, "workbook upload received",
		slog.String("filename", header.Filename),
		slog.Int64("size_bytes", header.Size))

	result := h.service.AnalyzeFile(ctx, path, info)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// GetAnalysis returns a stored analysis by ID.
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "analysisID")

	result, ok := h.service.Get(id)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.AnalysisNotFoundError(id))
		return
	}
	render.JSON(w, r, result)
}

// QueryRequest is the persona query payload.
type QueryRequest struct {
	Question string `json:"question" validate:"required,min=3,max=500"`
	Persona  string `json:"persona" validate:"omitempty,oneof=cfo ceo both"`
}

// QueryAnalysis answers a free-form question about a stored analysis in
// a CFO, CEO or combined voice.
func (h *AnalysisHandler) QueryAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "analysisID")

	var req QueryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("question", err.Error()))
		return
	}

	persona, ok := ai.ParsePersona(req.Persona)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("persona", "must be cfo, ceo or both"))
		return
	}

	answer, found := h.service.Query(r.Context(), id, persona, req.Question)
	if !found {
		h.errorHandler.HandleError(w, r, apierrors.AnalysisNotFoundError(id))
		return
	}
	render.JSON(w, r, answer)
}

func (h *AnalysisHandler) saveUpload(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, src)
	return err
}
