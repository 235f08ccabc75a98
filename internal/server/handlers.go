package server

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/render"
	"github.com/spf13/cast"

	"github.com/nao1215/crmscan/internal/config"
	"github.com/nao1215/crmscan/internal/csvio"
	"github.com/nao1215/crmscan/internal/model"
	"github.com/nao1215/crmscan/internal/pipeline"
	"github.com/nao1215/crmscan/internal/report"
)

// multipartMemory caps the in-memory portion of a multipart upload;
// larger parts spill to temporary files that Go removes after the
// request.
const multipartMemory = 8 << 20

// uploadSource names inputs that arrive without a filename.
const uploadSource = "upload"

// ErrorPayload describes one failed request.
type ErrorPayload struct {
	// Kind is a stable machine-readable failure category. Structural
	// table problems use the structural error kind names such as
	// "EmptyTable" or "TooManyRows"; malformed requests use
	// "BadRequest".
	Kind string `json:"kind"`

	// Detail is a human-readable description of the failure.
	Detail string `json:"detail"`
}

// ErrorResponse is the JSON body of every non-200 response.
type ErrorResponse struct {
	Error ErrorPayload `json:"error"`
}

// HealthResponse is the JSON body of the liveness probe.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Service string `json:"service"`
}

// handleHealthz reports liveness. It deliberately checks nothing: the
// server has no dependencies that could be down.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:  "ok",
		Version: s.version,
		Service: config.AppName,
	})
}

// handleSample serves the bundled sample CSV so API users can exercise
// the check endpoint without hunting for a file of their own.
func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, csvio.Sample())
}

// handleQualityCheck runs the full pipeline on the posted CSV and
// responds with the enveloped report.
func (s *Server) handleQualityCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	header, rows, source, err := s.readRequestCSV(r)
	if err != nil {
		if structuralErr, ok := model.AsStructural(err); ok {
			s.writeStructural(w, r, structuralErr)
		} else {
			s.writeBadRequest(w, r, err)
		}
		return
	}

	// An upload with no rows at all is an empty table. Report it here
	// rather than letting the read step mistake the source name for a
	// file path on the server's own filesystem.
	if header == nil && len(rows) == 0 {
		s.writeStructural(w, r, model.NewEmptyTableError())
		return
	}

	cfg, err := s.requestConfig(r)
	if err != nil {
		s.writeBadRequest(w, r, err)
		return
	}

	p := pipeline.DefaultPipeline(
		[]pipeline.Option{pipeline.WithLogger(s.logger)},
		pipeline.OptionsFromConfig(cfg)...,
	)
	if s.generator != nil && cast.ToBool(r.URL.Query().Get("explain")) {
		p.AddStep(pipeline.NewExplainStep(s.generator,
			pipeline.WithExplainTimeout(cfg.ExplainTimeout),
			pipeline.WithExplainLogger(s.logger),
		))
	}

	analysis := pipeline.NewAnalysisFromData(source, header, rows)
	if err := p.Execute(r.Context(), analysis); err != nil {
		if structuralErr, ok := model.AsStructural(err); ok {
			s.writeStructural(w, r, structuralErr)
		} else {
			s.writeInternal(w, r, err)
		}
		return
	}

	s.metrics.checksTotal.WithLabelValues(outcomeOK).Inc()
	s.metrics.checkDuration.Observe(time.Since(start).Seconds())
	s.metrics.observeReport(analysis.Report)

	envelope := report.NewEnvelope(analysis.Report, s.version, analysis.Source)
	envelope.Explanation = analysis.Explanation
	render.JSON(w, r, envelope)
}

// readRequestCSV extracts the CSV payload from the request. Raw bodies
// and multipart uploads under the "file" field are both accepted; the
// multipart filename becomes the report source when present.
func (s *Server) readRequestCSV(r *http.Request) (header []string, rows [][]string, source string, err error) {
	mediaType, _, parseErr := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if parseErr == nil && mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, nil, "", fmt.Errorf("failed to parse multipart form: %w", err)
		}

		file, fileHeader, err := r.FormFile("file")
		if err != nil {
			return nil, nil, "", fmt.Errorf("multipart form has no %q field: %w", "file", err)
		}
		defer file.Close()

		source = uploadSource
		if fileHeader.Filename != "" {
			source = filepath.Base(fileHeader.Filename)
		}

		header, rows, err = csvio.ReadAll(file)
		return header, rows, source, err
	}

	header, rows, err = csvio.ReadAll(r.Body)
	return header, rows, uploadSource, err
}

// requestConfig resolves the analysis configuration for one request: the
// server's base configuration overlaid with the profile named in the
// query string. The base is copied so concurrent requests never see each
// other's overrides.
func (s *Server) requestConfig(r *http.Request) (*config.Config, error) {
	cfg := *s.baseConfig

	name := r.URL.Query().Get("profile")
	if name == "" {
		return &cfg, nil
	}
	if s.profiles == nil {
		return nil, fmt.Errorf("unknown profile %q: no profiles configured", name)
	}
	if _, ok := s.profiles.Profiles[name]; !ok {
		return nil, fmt.Errorf("unknown profile %q", name)
	}

	cfg.ApplyProfile(s.profiles.GetProfile(name))
	return &cfg, nil
}

// writeStructural rejects a structurally broken table with 422 so
// callers can tell "your data is broken" apart from "your request is
// broken".
func (s *Server) writeStructural(w http.ResponseWriter, r *http.Request, structuralErr *model.StructuralError) {
	s.metrics.checksTotal.WithLabelValues(outcomeStructural).Inc()
	render.Status(r, http.StatusUnprocessableEntity)
	render.JSON(w, r, ErrorResponse{Error: ErrorPayload{
		Kind:   structuralErr.Kind.String(),
		Detail: structuralErr.Error(),
	}})
}

// writeBadRequest rejects a request the server could not read with 400.
func (s *Server) writeBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.metrics.checksTotal.WithLabelValues(outcomeBadRequest).Inc()
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: ErrorPayload{
		Kind:   "BadRequest",
		Detail: err.Error(),
	}})
}

// writeInternal reports an unexpected pipeline failure with 500. The
// error text stays in the log; clients get a generic message.
func (s *Server) writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("quality check failed",
		"request_id", RequestIDFromContext(r.Context()),
		"error", err,
	)
	s.metrics.checksTotal.WithLabelValues(outcomeError).Inc()
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, ErrorResponse{Error: ErrorPayload{
		Kind:   "Internal",
		Detail: "internal error",
	}})
}
