package todo

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/go-todo-auth/internal/auth"
	"github.com/redmonkez12/go-todo-auth/internal/httputil"
	"github.com/redmonkez12/go-todo-auth/internal/logging"
)

// Handler contains HTTP handlers for the todo endpoints. All of them sit
// behind auth.Middleware.RequireAuth.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateTodoRequest represents the create request body
type CreateTodoRequest struct {
	Content string `json:"content"`
}

// TodoResponse wraps a single todo
type TodoResponse struct {
	Message string `json:"message"`
	Todo    *Todo  `json:"todo"`
}

// TodosResponse wraps the caller's todo list
type TodosResponse struct {
	Message string `json:"message"`
	Todos   []Todo `json:"todos"`
}

// Create handles todo creation
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateTodoRequest true "Todo content"
// @Success      201 {object} TodoResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing content"
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid token"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Failure      503 {object} httputil.ErrorResponse "Operation timed out"
// @Router       /todos [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req CreateTodoRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		logger.Warn("invalid create todo request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), ownerID, req.Content)
	if err != nil {
		if errors.Is(err, ErrContentRequired) {
			httputil.RespondErrorWithCode(w, "Todo content is required", httputil.CodeContentRequired, http.StatusBadRequest)
			return
		}
		respondInternalError(w, logger, "create todo", "Server error during todo creation", err)
		return
	}

	logger.Info("todo created", "todo_id", created.ID)

	httputil.RespondJSON(w, TodoResponse{
		Message: "Todo created successfully!",
		Todo:    created,
	}, http.StatusCreated)
}

// List handles fetching the caller's todos
// @Summary      List todos
// @Description  Returns every todo owned by the caller, oldest first.
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} TodosResponse
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid token"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Failure      503 {object} httputil.ErrorResponse "Operation timed out"
// @Router       /todos [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	todos, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		respondInternalError(w, logger, "list todos", "Server error during fetching todos", err)
		return
	}

	httputil.RespondJSON(w, TodosResponse{
		Message: "Todos fetched successfully!",
		Todos:   todos,
	}, http.StatusOK)
}

// Update handles partial todo updates
// @Summary      Update a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Todo ID"
// @Param        request body UpdateInput true "Fields to change"
// @Success      200 {object} TodoResponse
// @Failure      400 {object} httputil.ErrorResponse "Nothing to update or empty content"
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid token"
// @Failure      404 {object} httputil.ErrorResponse "Not found or not owned by caller"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Failure      503 {object} httputil.ErrorResponse "Operation timed out"
// @Router       /todos/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	// a malformed id cannot name any row, so it is reported like a foreign one
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondNotFound(w, "Todo not found or not authorized to update")
		return
	}

	var in UpdateInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		logger.Warn("invalid update todo request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), ownerID, id, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoUpdateFields):
			httputil.RespondErrorWithCode(w, "No update data provided (content or completed status)", httputil.CodeNoUpdateFields, http.StatusBadRequest)
		case errors.Is(err, ErrContentRequired):
			httputil.RespondErrorWithCode(w, "Todo content is required", httputil.CodeContentRequired, http.StatusBadRequest)
		case errors.Is(err, ErrNotFound):
			respondNotFound(w, "Todo not found or not authorized to update")
		default:
			respondInternalError(w, logger, "update todo", "Server error during todo update", err)
		}
		return
	}

	httputil.RespondJSON(w, TodoResponse{
		Message: "Todo updated successfully!",
		Todo:    updated,
	}, http.StatusOK)
}

// Delete handles todo removal
// @Summary      Delete a todo
// @Tags         todos
// @Security     BearerAuth
// @Param        id path string true "Todo ID"
// @Success      204
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid token"
// @Failure      404 {object} httputil.ErrorResponse "Not found or not owned by caller"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Failure      503 {object} httputil.ErrorResponse "Operation timed out"
// @Router       /todos/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondNotFound(w, "Todo not found or not authorized to delete")
		return
	}

	if err := h.service.Delete(r.Context(), ownerID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondNotFound(w, "Todo not found or not authorized to delete")
			return
		}
		respondInternalError(w, logger, "delete todo", "Server error during todo deletion", err)
		return
	}

	httputil.RespondNoContent(w)
}

// requireOwner reads the subject placed in the context by the gate. Reaching
// a handler without one means the route was mounted outside the gate.
func requireOwner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "User not authenticated", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return ownerID, true
}

func respondNotFound(w http.ResponseWriter, message string) {
	httputil.RespondErrorWithCode(w, message, httputil.CodeNotFound, http.StatusNotFound)
}

func respondInternalError(w http.ResponseWriter, logger *logging.Logger, op, message string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		logger.Error(op+" failed: operation timed out", "error", err.Error())
		httputil.RespondErrorWithCode(w, "operation timed out, please retry", httputil.CodeTimeout, http.StatusServiceUnavailable)
		return
	}
	logger.Error(op+" failed: internal error", "error", err.Error())
	httputil.RespondErrorWithCode(w, message, httputil.CodeInternalError, http.StatusInternalServerError)
}
