// Package http is the transport layer for the upload-and-compare API used
// by the browser UI. It contains no comparison logic; uploads are staged to
// temporary files and handed to the nem12 engine.
package http

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/render"

	apierrors "nemcli/internal/errors"
	"nemcli/internal/nem12"
)

// maxUploadBytes caps one side of an uploaded pair at 64 MiB.
const maxUploadBytes = 64 << 20

// CompareHandler handles comparison HTTP requests
type CompareHandler struct {
	logger *slog.Logger
}

// NewCompareHandler creates a new comparison handler
func NewCompareHandler(logger *slog.Logger) *CompareHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompareHandler{logger: logger.With(slog.String("handler", "compare"))}
}

// Compare handles POST /api/compare. It expects multipart form fields
// "before" and "after" holding the two NEM12 files, plus an optional
// "tolerance" field that switches value matching to numeric comparison.
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(2 * maxUploadBytes); err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	beforePath, beforeName, err := h.stageUpload(r, "before")
	if err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer os.Remove(beforePath)

	afterPath, afterName, err := h.stageUpload(r, "after")
	if err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer os.Remove(afterPath)

	opts, err := compareOptions(r.FormValue("tolerance"))
	if err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	result, err := nem12.CompareFiles(beforePath, afterPath, opts...)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "comparison failed",
			slog.String("before", beforeName),
			slog.String("after", afterName),
			slog.Any("error", err))
		render.Render(w, r, apierrors.ComparisonFailedWithError(err))
		return
	}

	// Staged files carry generated names; report the uploaded ones.
	result.Metadata.BeforeFileName = beforeName
	result.Metadata.AfterFileName = afterName
	result.Metadata.ReportName = nem12.ReportNameFromFile(beforeName)

	h.logger.InfoContext(r.Context(), "comparison completed",
		slog.String("before", beforeName),
		slog.String("after", afterName),
		slog.Int("issues", len(result.Issues)))
	render.JSON(w, r, result)
}

// Healthz handles GET /api/healthz
func (h *CompareHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// stageUpload copies one multipart file to a temp path for parsing.
func (h *CompareHandler) stageUpload(r *http.Request, field string) (path, name string, err error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", "", fmt.Errorf("missing %q file field: %w", field, err)
	}
	defer file.Close()
	if header.Size > maxUploadBytes {
		return "", "", fmt.Errorf("%q file exceeds the %d byte upload limit", field, maxUploadBytes)
	}
	path, err = stageToTemp(file, field)
	if err != nil {
		return "", "", err
	}
	return path, filepath.Base(header.Filename), nil
}

func stageToTemp(file multipart.File, field string) (string, error) {
	tmp, err := os.CreateTemp("", "nemcli-upload-"+field+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}
	defer tmp.Close()
	if _, err := io.Copy(tmp, io.LimitReader(file, maxUploadBytes+1)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}
	return tmp.Name(), nil
}

// compareOptions parses the optional tolerance form value. Empty means
// exact string comparison; a number enables tolerance-based matching.
func compareOptions(raw string) ([]nem12.CompareOption, error) {
	if raw == "" {
		return nil, nil
	}
	tol, err := strconv.ParseFloat(raw, 64)
	if err != nil || tol < 0 {
		return nil, fmt.Errorf("invalid tolerance %q", raw)
	}
	return []nem12.CompareOption{nem12.WithNumericTolerance(tol)}, nil
}
