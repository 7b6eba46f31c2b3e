package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasksplit/internal/api/shared"
	"github.com/phrazzld/tasksplit/internal/platform/logger"
	"github.com/phrazzld/tasksplit/internal/service"
)

// UploadFieldName is the multipart form field carrying the contact list.
const UploadFieldName = "file"

// multipartOverhead is added to the file size limit to leave room for the
// multipart boundaries and part headers.
const multipartOverhead = 64 << 10

// ListHandler serves the contact list upload and task endpoints.
type ListHandler struct {
	taskService    service.TaskService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewListHandler creates a new ListHandler. Uploaded files larger than
// maxUploadBytes are rejected with 413.
func NewListHandler(taskService service.TaskService, maxUploadBytes int64, logger *slog.Logger) *ListHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListHandler{
		taskService:    taskService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With("component", "list_handler"),
	}
}

// Upload handles POST /lists/upload.
func (h *ListHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	file, header, err := r.FormFile(UploadFieldName)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			HandleAPIError(w, r, err, "")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "No file uploaded", err)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > h.maxUploadBytes {
		HandleAPIError(w, r, &http.MaxBytesError{Limit: h.maxUploadBytes}, "")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read uploaded file")
		return
	}

	result, err := h.taskService.Upload(r.Context(), user, service.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to process uploaded file")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("upload handled",
		"batch_id", result.Batch.ID,
		"size_bytes", len(data))

	shared.RespondWithJSON(w, r, http.StatusOK, UploadResponse{
		Message:         "File uploaded and tasks distributed successfully",
		BatchID:         result.Batch.ID,
		TaskCount:       result.TaskCount,
		Assignments:     result.Assignments,
		ReplacedBatchID: result.ReplacedBatchID,
	})
}

// Distributed handles GET /lists/distributed.
func (h *ListHandler) Distributed(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListDistributed(r.Context(), user)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	resp := make([]DistributedTaskResponse, len(tasks))
	for i, t := range tasks {
		resp[i] = distributedTaskResponse(t)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// MyTasks handles GET /lists/my-tasks.
func (h *ListHandler) MyTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListOwn(r.Context(), user)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// UpdateStatus handles PUT /lists/tasks/{id}/status.
func (h *ListHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.UpdateStatus(r.Context(), user, taskID, req.Status)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UpdateStatusResponse{
		Message: "Task status updated",
		Task:    task,
	})
}
