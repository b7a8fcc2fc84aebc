package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ai-chat-assistant/internal/domain"
	"ai-chat-assistant/internal/domain/model"
	"ai-chat-assistant/internal/domain/ports/repository"
	"ai-chat-assistant/internal/infra/logging"
	"ai-chat-assistant/internal/usecase"
)

type messageRequest struct {
	Message string `json:"message"`
}

type jobCreated struct {
	JobID string `json:"job_id"`
}

type jobSummary struct {
	JobID       string          `json:"job_id"`
	Type        model.JobKind   `json:"type"`
	Status      model.JobStatus `json:"status"`
	Content     string          `json:"content"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at"`
}

type jobList struct {
	TotalMessageJobs int          `json:"total_message_jobs"`
	TotalFileJobs    int          `json:"total_file_jobs"`
	Jobs             []jobSummary `json:"jobs"`
}

type historyItem struct {
	ID string `json:"id"`
	model.JobView
}

type historyReply struct {
	Success  bool          `json:"success"`
	Messages []historyItem `json:"messages"`
}

type successReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type messageReply struct {
	Message string `json:"message"`
}

type healthReply struct {
	Status            string    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
	Version           string    `json:"version"`
	ActiveMessageJobs int       `json:"active_message_jobs"`
	ActiveFileJobs    int       `json:"active_file_jobs"`
}

type errorReply struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"name":        ServiceName,
		"version":     ServiceVersion,
		"description": "Asynchronous AI chat with file analysis and provider fallback",
		"endpoints": map[string]string{
			"health":   "/health",
			"messages": "/messages",
			"files":    "/files",
			"chat":     "/chat",
			"context":  "/context",
			"metrics":  "/metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	msgs, files, err := s.jobs.Counts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, healthReply{
		Status:            "healthy",
		Timestamp:         s.now(),
		Version:           ServiceVersion,
		ActiveMessageJobs: msgs,
		ActiveFileJobs:    files,
	})
}

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeDetail(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	id, err := s.jobs.SubmitMessage(r.Context(), req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, jobCreated{JobID: id})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Get(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, job.View())
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobs.List(r.Context(), repository.OrderDesc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := jobList{Jobs: make([]jobSummary, 0, len(jobs))}
	for _, j := range jobs {
		if j.Kind == model.JobKindFile {
			out.TotalFileJobs++
		} else {
			out.TotalMessageJobs++
		}
		out.Jobs = append(out.Jobs, jobSummary{
			JobID:       j.ID,
			Type:        j.Kind,
			Status:      j.Status,
			Content:     j.Preview(),
			CreatedAt:   j.CreatedAt,
			CompletedAt: j.CompletedAt,
		})
	}
	render.JSON(w, r, out)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	job, err := s.jobs.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	removed, err := s.jobs.Delete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !removed {
		writeDetail(w, r, http.StatusNotFound, "Job not found")
		return
	}
	msg := "Message job deleted successfully"
	if job.Kind == model.JobKindFile {
		msg = "File job deleted successfully"
	}
	render.JSON(w, r, messageReply{Message: msg})
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if s.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeDetail(w, r, http.StatusBadRequest, "File exceeds maximum allowed size")
			return
		}
		writeDetail(w, r, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	id, err := s.jobs.SubmitFile(r.Context(), usecase.FileUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, jobCreated{JobID: id})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.context.History(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := historyReply{Success: true, Messages: make([]historyItem, 0, len(jobs))}
	for _, j := range jobs {
		out.Messages = append(out.Messages, historyItem{ID: j.ID, JobView: j.View()})
	}
	render.JSON(w, r, out)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if _, err := s.jobs.ClearAll(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, successReply{Success: true, Message: "Chat history cleared successfully"})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := s.context.Analytics(r.Context())
	if err != nil {
		s.writeError(w, r, fmt.Errorf("analyzing context: %w", err))
		return
	}
	render.JSON(w, r, a)
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	p, err := s.context.OptimizePreview(r.Context(), r.URL.Query().Get("test_message"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("optimizing context: %w", err))
		return
	}
	render.JSON(w, r, p)
}

// writeError maps domain errors onto status codes with a {"detail"} body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeDetail(w, r, http.StatusBadRequest, verr.Detail)
	case errors.Is(err, domain.ErrEmptyMessage):
		writeDetail(w, r, http.StatusBadRequest, "Message cannot be empty")
	case domain.IsValidation(err):
		writeDetail(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeDetail(w, r, http.StatusNotFound, "Job not found")
	case errors.Is(err, domain.ErrQueueFull):
		writeDetail(w, r, http.StatusServiceUnavailable, "Server is busy, try again later")
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeDetail(w, r, http.StatusInternalServerError, err.Error())
	}
}

func writeDetail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	render.Status(r, status)
	render.JSON(w, r, errorReply{Detail: detail})
}
