package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/gateway"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/repository"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/service"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/store"
	apperrors "github.com/itaybe6/Events-Mannagement-sub003/pkg/app_errors"
	"github.com/itaybe6/Events-Mannagement-sub003/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventHandler struct {
	auth    gateway.AuthGateway
	events  repository.EventRepository
	planner *store.Manager
}

func NewEventHandler(auth gateway.AuthGateway, events repository.EventRepository, planner *store.Manager) *EventHandler {
	return &EventHandler{auth: auth, events: events, planner: planner}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1", AuthRequired(h.auth))
	{
		router.GET("events", h.List)
		router.POST("events", h.Create)
		router.GET("events/:id", h.Get)
		router.PUT("events/:id", h.Update)
		router.POST("events/:id/tasks", h.AddTask)
		router.PUT("events/:id/tasks/:taskID", h.UpdateTask)
		router.DELETE("events/:id/tasks/:taskID", h.DeleteTask)
	}
}

type ListEventsQuery struct {
	Query string `form:"query"`
	Month int    `form:"month"` // 1-12, 0 means no month filter
	Date  string `form:"date"`  // YYYY-MM-DD
	Sort  string `form:"sort"`  // asc (default) or desc
}

type CreateEventRequest struct {
	Title         string  `json:"title" binding:"required"`
	Date          string  `json:"date" binding:"required"` // RFC3339
	Location      string  `json:"location"`
	City          string  `json:"city"`
	Narrative     *string `json:"narrative"`
	GuestEstimate int     `json:"guest_estimate"`
	Budget        float64 `json:"budget"`
	OwnerID       string  `json:"owner_id"` // admins may create on behalf of a couple
}

type UpdateEventRequest struct {
	Title         *string  `json:"title"`
	Date          *string  `json:"date"`
	Location      *string  `json:"location"`
	City          *string  `json:"city"`
	Narrative     *string  `json:"narrative"`
	GuestEstimate *int     `json:"guest_estimate"`
	Budget        *float64 `json:"budget"`
}

type TaskRequest struct {
	Title   string  `json:"title" binding:"required"`
	DueDate *string `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title   *string `json:"title"`
	Done    *bool   `json:"done"`
	DueDate *string `json:"due_date"`
}

// parseListCriteria turns the list query params into filter criteria. An
// exact date wins over a month filter; an out-of-range month is rejected
// rather than ignored.
func parseListCriteria(q ListEventsQuery) (service.ListCriteria, error) {
	criteria := service.ListCriteria{
		Query:          q.Query,
		SortDescending: q.Sort == "desc",
	}
	if q.Date != "" {
		date, err := time.Parse("2006-01-02", q.Date)
		if err != nil {
			return criteria, errors.New("Invalid date, use YYYY-MM-DD")
		}
		criteria.FilterDate = &date
		return criteria, nil
	}
	if q.Month != 0 {
		if q.Month < 1 || q.Month > 12 {
			return criteria, errors.New("Invalid month, use 1-12")
		}
		month := time.Month(q.Month)
		criteria.FilterMonth = &month
	}
	return criteria, nil
}

// List serves the role-scoped event list: couples see their own events,
// admins and employees see everything. Filtering and sorting run through
// the list model, so failures surface as an alert with an empty list
// rather than an error status.
func (h *EventHandler) List(c *gin.Context) {
	var q ListEventsQuery
	if err := BindQuery(c, &q); err != nil {
		return
	}

	criteria, err := parseListCriteria(q)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	loader := func(ctx context.Context) ([]*model.Event, error) {
		if user.Role == model.RoleCouple {
			return h.events.ListByOwner(ctx, user.ID)
		}
		return h.events.List(ctx)
	}

	list := service.NewEventListModel(loader, "Load failed", "Could not load events, please try again", logger.WithComponent("event_list"))
	list.SetCriteria(criteria)
	list.Refresh(c)

	c.JSON(http.StatusOK, gin.H{
		"events": list.Events(),
		"alert":  list.LastAlert(),
	})
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, use RFC3339"})
		return
	}

	user := currentUser(c)
	ownerID := user.ID
	if req.OwnerID != "" && user.Role == model.RoleAdmin {
		parsed, err := uuid.Parse(req.OwnerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid owner id"})
			return
		}
		ownerID = parsed
	}

	event := &model.Event{
		OwnerID:       ownerID,
		Title:         req.Title,
		Date:          date,
		Location:      req.Location,
		City:          req.City,
		Narrative:     req.Narrative,
		GuestEstimate: req.GuestEstimate,
		Budget:        req.Budget,
	}
	created, err := h.events.Create(c, event)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) Get(c *gin.Context) {
	event, ok := h.loadManagedEvent(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Update(c *gin.Context) {
	event, ok := h.loadManagedEvent(c)
	if !ok {
		return
	}

	var req UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	params := model.UpdateEventParams{
		Title:         req.Title,
		Location:      req.Location,
		City:          req.City,
		Narrative:     req.Narrative,
		GuestEstimate: req.GuestEstimate,
		Budget:        req.Budget,
	}
	if req.Date != nil {
		date, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, use RFC3339"})
			return
		}
		params.Date = &date
	}

	updated, err := h.events.Update(c, event.ID, params)
	if err != nil {
		h.handleError(c, err, "Update")
		return
	}

	// Keep an open planning session in step with the row update.
	if s, err := h.planner.Open(c, event.ID); err == nil {
		if err := s.UpdateEvent(c, params); err != nil {
			logger.WithComponent("handler").Warn("planner sync failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, updated)
}

// Task endpoints mutate the planning store first, then persist the task
// list back to the event row; the store is the working copy, the row the
// source of truth.

func (h *EventHandler) AddTask(c *gin.Context) {
	event, ok := h.loadManagedEvent(c)
	if !ok {
		return
	}
	var req TaskRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	task := model.Task{ID: uuid.New(), Title: req.Title}
	if req.DueDate != nil {
		due, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due_date, use RFC3339"})
			return
		}
		task.DueDate = &due
	}

	if err := h.withTasks(c, event.ID, func(ctx context.Context, s *store.EventStore) error {
		return s.AddTask(ctx, task)
	}); err != nil {
		h.handleError(c, err, "AddTask")
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *EventHandler) UpdateTask(c *gin.Context) {
	event, ok := h.loadManagedEvent(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("taskID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task id"})
		return
	}
	var req UpdateTaskRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	params := model.UpdateTaskParams{Title: req.Title, Done: req.Done}
	if req.DueDate != nil {
		due, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due_date, use RFC3339"})
			return
		}
		params.DueDate = &due
	}

	if err := h.withTasks(c, event.ID, func(ctx context.Context, s *store.EventStore) error {
		return s.UpdateTask(ctx, taskID, params)
	}); err != nil {
		h.handleError(c, err, "UpdateTask")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) DeleteTask(c *gin.Context) {
	event, ok := h.loadManagedEvent(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("taskID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task id"})
		return
	}

	if err := h.withTasks(c, event.ID, func(ctx context.Context, s *store.EventStore) error {
		return s.DeleteTask(ctx, taskID)
	}); err != nil {
		h.handleError(c, err, "DeleteTask")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) withTasks(c *gin.Context, eventID uuid.UUID, mutate func(context.Context, *store.EventStore) error) error {
	s, err := h.planner.Open(c, eventID)
	if err != nil {
		return err
	}
	if err := mutate(c, s); err != nil {
		return err
	}
	event := s.Event()
	if event == nil {
		return apperrors.ErrEventNotFound
	}
	return h.events.SaveTasks(c, eventID, event.Tasks)
}

// loadManagedEvent parses the :id param, loads the event and checks the
// signed-in user may manage it. On failure it writes the response itself.
func (h *EventHandler) loadManagedEvent(c *gin.Context) (*model.Event, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return nil, false
	}
	event, err := h.events.FindByID(c, id)
	if err != nil {
		h.handleError(c, err, "loadManagedEvent")
		return nil, false
	}
	if !canManageEvent(currentUser(c), event.OwnerID.String()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed"})
		return nil, false
	}
	return event, true
}

func (h *EventHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
