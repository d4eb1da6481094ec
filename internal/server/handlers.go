package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/satonodoka/herp-recommender/internal/extraction"
	"github.com/satonodoka/herp-recommender/internal/pipeline"
)

const (
	maxPayloadBytes = 1 << 20  // upstream JSON
	maxResumeBytes  = 20 << 20 // uploaded resume document
)

// handleUpload stages the upstream payload. The payload must parse as one of
// the two supported shapes; the extraction preview comes back so the operator
// can confirm the right title was captured before executing.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		s.errorResponse(w, &ErrValidation{Field: "body", Message: "failed to read request body"})
		return
	}

	if _, err := extraction.ParseUpstreamRecord(body); err != nil {
		s.errorResponse(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	s.mu.Lock()
	s.upstreamJSON = body
	s.mu.Unlock()

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"staged":     true,
		"extraction": extraction.ExtractFromJSON(body),
	})
}

// handleResume stages the candidate's resume PDF via multipart upload.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxResumeBytes); err != nil {
		s.errorResponse(w, &ErrValidation{Field: "resume", Message: "invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("resume")
	if err != nil {
		s.errorResponse(w, &ErrValidation{Field: "resume", Message: "missing 'resume' file part"})
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		s.errorResponse(w, &ErrValidation{Field: "resume", Message: "only PDF documents are accepted"})
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		s.errorResponse(w, fmt.Errorf("creating upload dir: %w", err))
		return
	}
	path := filepath.Join(s.cfg.UploadDir, uuid.NewString()+".pdf")
	dst, err := os.Create(path)
	if err != nil {
		s.errorResponse(w, fmt.Errorf("creating upload file: %w", err))
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		s.errorResponse(w, fmt.Errorf("writing upload file: %w", err))
		return
	}

	s.mu.Lock()
	s.resumePath = path
	s.mu.Unlock()

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"staged":   true,
		"filename": header.Filename,
		"path":     path,
	})
}

// executeRequest optionally overrides the staged resume path.
type executeRequest struct {
	ResumePath string `json:"resume_path,omitempty" validate:"omitempty,min=1"`
}

// handleExecute runs the full pipeline against the staged inputs. A completed
// run with a negative verdict is 422, not an internal error: the trail is the
// response either way.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if !s.runMu.TryLock() {
		s.errorResponse(w, &ErrRunInProgress{})
		return
	}
	defer s.runMu.Unlock()

	opts, err := s.buildRunOptions(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	result, runErr := s.run(r.Context(), opts)
	if result == nil {
		s.errorResponse(w, runErr)
		return
	}
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	s.jsonResponse(w, status, result)
}

// handleExecuteStream is handleExecute over SSE: progress events as the run
// advances, then the result and a completion marker.
func (s *Server) handleExecuteStream(w http.ResponseWriter, r *http.Request) {
	if !s.runMu.TryLock() {
		s.errorResponse(w, &ErrRunInProgress{})
		return
	}
	defer s.runMu.Unlock()

	opts, err := s.buildRunOptions(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	opts.OnProgress = func(ev pipeline.ProgressEvent) {
		sse.WriteEvent("progress", ev) //nolint:errcheck
	}

	result, runErr := s.run(r.Context(), opts)
	if result == nil {
		sse.WriteError(runErr.Error())
		return
	}
	sse.WriteEvent("result", result) //nolint:errcheck
	status := "failed"
	if result.Success {
		status = "completed"
	}
	sse.WriteComplete(status)
}

// handleClose tears down the portal session. The next execute reopens one.
func (s *Server) handleClose(w http.ResponseWriter, _ *http.Request) {
	s.closeSession()
	s.jsonResponse(w, http.StatusOK, map[string]bool{"closed": true})
}

// buildRunOptions validates the request and assembles everything a pipeline
// run needs from the staged state.
func (s *Server) buildRunOptions(r *http.Request) (pipeline.RunOptions, error) {
	var req executeRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			return pipeline.RunOptions{}, &ErrValidation{Field: "body", Message: "invalid JSON body"}
		}
	}
	if err := s.validate.Struct(req); err != nil {
		return pipeline.RunOptions{}, &ErrValidation{Field: "resume_path", Message: err.Error()}
	}

	s.mu.Lock()
	upstream := s.upstreamJSON
	resumePath := s.resumePath
	s.mu.Unlock()
	if req.ResumePath != "" {
		resumePath = req.ResumePath
	}

	if len(upstream) == 0 {
		return pipeline.RunOptions{}, &ErrMissingPayload{}
	}
	if resumePath == "" {
		return pipeline.RunOptions{}, &ErrMissingResume{}
	}

	sess, err := s.ensureSession(r.Context())
	if err != nil {
		return pipeline.RunOptions{}, &ErrPortalUnavailable{Cause: err}
	}

	return pipeline.RunOptions{
		UpstreamJSON: upstream,
		ResumePath:   resumePath,
		Portal:       sess,
		Extractor:    s.extractor,
		Audit:        s.auditWriter,
		Log:          s.log,
	}, nil
}
