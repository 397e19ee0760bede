package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/gateway"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/queue"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/repository"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/store"
	apperrors "github.com/itaybe6/Events-Mannagement-sub003/pkg/app_errors"
	"github.com/itaybe6/Events-Mannagement-sub003/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlannerHandler serves the planning screens of one event: guest list,
// seating tables, gifts and outbound messages. Mutations go to the
// planning store (write-through snapshot) and, where a remote row exists,
// to the rows repository as well.
type PlannerHandler struct {
	auth    gateway.AuthGateway
	events  repository.EventRepository
	guests  repository.GuestRepository
	planner *store.Manager
	outbox  queue.MessageQueue
}

func NewPlannerHandler(auth gateway.AuthGateway, events repository.EventRepository, guests repository.GuestRepository, planner *store.Manager, outbox queue.MessageQueue) *PlannerHandler {
	return &PlannerHandler{auth: auth, events: events, guests: guests, planner: planner, outbox: outbox}
}

func (h *PlannerHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1/events/:id", AuthRequired(h.auth))
	{
		router.GET("planner", h.GetState)
		router.POST("planner/refresh", h.Refresh)

		router.POST("guests", h.AddGuest)
		router.PUT("guests/:guestID", h.UpdateGuest)
		router.PATCH("guests/:guestID/status", h.UpdateGuestStatus)
		router.DELETE("guests/:guestID", h.DeleteGuest)

		router.GET("tables", h.ListTables)
		router.POST("tables", h.AddTable)
		router.PUT("tables/:tableID", h.UpdateTable)
		router.DELETE("tables/:tableID", h.DeleteTable)
		router.GET("tables/:tableID/guests", h.GuestsAtTable)

		router.POST("seating", h.AssignSeat)
		router.DELETE("seating/:guestID", h.RemoveSeat)

		router.POST("gifts", h.AddGift)
		router.PATCH("gifts/:giftID/status", h.UpdateGiftStatus)

		router.GET("messages", h.ListMessages)
		router.POST("messages", h.SendMessage)
	}
}

type GuestRequest struct {
	Name           string  `json:"name" binding:"required"`
	Phone          string  `json:"phone"`
	Status         string  `json:"status"`
	Category       string  `json:"category"`
	NumberOfPeople int     `json:"number_of_people"`
	Message        *string `json:"message"`
}

type UpdateGuestRequest struct {
	Name           *string  `json:"name"`
	Phone          *string  `json:"phone"`
	Status         *string  `json:"status"`
	Category       *string  `json:"category"`
	NumberOfPeople *int     `json:"number_of_people"`
	GiftAmount     *float64 `json:"gift_amount"`
	Message        *string  `json:"message"`
}

type GuestStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type TableRequest struct {
	Name     string `json:"name" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
	Area     string `json:"area"`
	Shape    string `json:"shape"`
}

type UpdateTableRequest struct {
	Name     *string `json:"name"`
	Capacity *int    `json:"capacity"`
	Area     *string `json:"area"`
	Shape    *string `json:"shape"`
}

type AssignSeatRequest struct {
	GuestID string `json:"guest_id" binding:"required"`
	TableID string `json:"table_id" binding:"required"`
}

type GiftRequest struct {
	GuestName string  `json:"guest_name" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	Message   string  `json:"message"`
	Status    string  `json:"status"`
}

type GiftStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type SendMessageRequest struct {
	Channel        string `json:"channel" binding:"required"`
	RecipientName  string `json:"recipient_name" binding:"required"`
	RecipientPhone string `json:"recipient_phone" binding:"required"`
	Body           string `json:"body" binding:"required"`
}

func (h *PlannerHandler) GetState(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"event":    s.Event(),
		"guests":   s.Guests(),
		"tables":   s.Tables(),
		"gifts":    s.Gifts(),
		"messages": s.Messages(),
	})
}

func (h *PlannerHandler) Refresh(c *gin.Context) {
	eventID, ok := h.authorizeEvent(c)
	if !ok {
		return
	}
	s, err := h.planner.Refresh(c, eventID)
	if err != nil {
		h.handleError(c, err, "Refresh")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"event":  s.Event(),
		"guests": s.Guests(),
	})
}

func (h *PlannerHandler) AddGuest(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	var req GuestRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	status := model.RSVPStatus(req.Status)
	if req.Status != "" && !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RSVP status"})
		return
	}

	guest := model.Guest{
		ID:             uuid.New(),
		EventID:        s.Event().ID,
		Name:           req.Name,
		Phone:          req.Phone,
		Status:         status,
		Category:       req.Category,
		NumberOfPeople: req.NumberOfPeople,
		Message:        req.Message,
	}
	if _, err := h.guests.Create(c, &guest); err != nil {
		h.handleError(c, err, "AddGuest")
		return
	}
	if err := s.AddGuest(c, guest); err != nil {
		h.handleError(c, err, "AddGuest")
		return
	}
	c.JSON(http.StatusCreated, guest)
}

func (h *PlannerHandler) UpdateGuest(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	guestID, err := uuid.Parse(c.Param("guestID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest id"})
		return
	}
	var req UpdateGuestRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	params := model.UpdateGuestParams{
		Name:           req.Name,
		Phone:          req.Phone,
		Category:       req.Category,
		NumberOfPeople: req.NumberOfPeople,
		GiftAmount:     req.GiftAmount,
		Message:        req.Message,
	}
	if req.Status != nil {
		status := model.RSVPStatus(*req.Status)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RSVP status"})
			return
		}
		params.Status = &status
	}

	if _, err := h.guests.Update(c, guestID, params); err != nil && !errors.Is(err, apperrors.ErrGuestNotFound) {
		h.handleError(c, err, "UpdateGuest")
		return
	}
	if err := s.UpdateGuest(c, guestID, params); err != nil {
		h.handleError(c, err, "UpdateGuest")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlannerHandler) UpdateGuestStatus(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	guestID, err := uuid.Parse(c.Param("guestID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest id"})
		return
	}
	var req GuestStatusRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	status := model.RSVPStatus(req.Status)
	if !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RSVP status"})
		return
	}

	if _, err := h.guests.Update(c, guestID, model.UpdateGuestParams{Status: &status}); err != nil && !errors.Is(err, apperrors.ErrGuestNotFound) {
		h.handleError(c, err, "UpdateGuestStatus")
		return
	}
	if err := s.UpdateGuestStatus(c, guestID, status); err != nil {
		h.handleError(c, err, "UpdateGuestStatus")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlannerHandler) DeleteGuest(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	guestID, err := uuid.Parse(c.Param("guestID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest id"})
		return
	}

	if err := h.guests.Delete(c, guestID); err != nil && !errors.Is(err, apperrors.ErrGuestNotFound) {
		h.handleError(c, err, "DeleteGuest")
		return
	}
	if err := s.DeleteGuest(c, guestID); err != nil {
		h.handleError(c, err, "DeleteGuest")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlannerHandler) ListTables(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Tables())
}

func (h *PlannerHandler) AddTable(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	var req TableRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	shape := model.TableShape(req.Shape)
	if req.Shape == "" {
		shape = model.TableShapeSquare
	}
	if !shape.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table shape"})
		return
	}

	table := model.Table{
		ID:       uuid.New(),
		EventID:  s.Event().ID,
		Name:     req.Name,
		Capacity: req.Capacity,
		Area:     req.Area,
		Shape:    shape,
	}
	if err := s.AddTable(c, table); err != nil {
		h.handleError(c, err, "AddTable")
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (h *PlannerHandler) UpdateTable(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	tableID, err := uuid.Parse(c.Param("tableID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table id"})
		return
	}
	var req UpdateTableRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	params := model.UpdateTableParams{
		Name:     req.Name,
		Capacity: req.Capacity,
		Area:     req.Area,
	}
	if req.Shape != nil {
		shape := model.TableShape(*req.Shape)
		if !shape.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table shape"})
			return
		}
		params.Shape = &shape
	}

	if err := s.UpdateTable(c, tableID, params); err != nil {
		h.handleError(c, err, "UpdateTable")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlannerHandler) DeleteTable(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	tableID, err := uuid.Parse(c.Param("tableID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table id"})
		return
	}

	// Unseat former occupants remotely as well; the store handles the
	// local side.
	for _, guest := range s.GuestsAtTable(tableID) {
		if err := h.guests.UpdateSeating(c, guest.ID, nil); err != nil && !errors.Is(err, apperrors.ErrGuestNotFound) {
			h.handleError(c, err, "DeleteTable")
			return
		}
	}
	if err := s.DeleteTable(c, tableID); err != nil {
		h.handleError(c, err, "DeleteTable")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlannerHandler) GuestsAtTable(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	tableID, err := uuid.Parse(c.Param("tableID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table id"})
		return
	}
	c.JSON(http.StatusOK, s.GuestsAtTable(tableID))
}

func (h *PlannerHandler) AssignSeat(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	var req AssignSeatRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	guestID, err := uuid.Parse(req.GuestID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest id"})
		return
	}
	tableID, err := uuid.Parse(req.TableID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table id"})
		return
	}

	if err := s.AssignGuestToTable(c, guestID, tableID); err != nil {
		h.handleError(c, err, "AssignSeat")
		return
	}
	if guest, found := s.FindGuest(guestID); found && guest.TableID != nil {
		if err := h.guests.UpdateSeating(c, guestID, guest.TableID); err != nil && !errors.Is(err, apperrors.ErrGuestNotFound) {
			h.handleError(c, err, "AssignSeat")
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *PlannerHandler) RemoveSeat(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	guestID, err := uuid.Parse(c.Param("guestID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest id"})
		return
	}

	if err := s.RemoveGuestFromTable(c, guestID); err != nil {
		h.handleError(c, err, "RemoveSeat")
		return
	}
	if err := h.guests.UpdateSeating(c, guestID, nil); err != nil && !errors.Is(err, apperrors.ErrGuestNotFound) {
		h.handleError(c, err, "RemoveSeat")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlannerHandler) AddGift(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	var req GiftRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	status := model.GiftStatus(req.Status)
	if req.Status != "" && !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gift status"})
		return
	}

	gift := model.Gift{
		ID:        uuid.New(),
		EventID:   s.Event().ID,
		GuestName: req.GuestName,
		Amount:    req.Amount,
		Message:   req.Message,
		Date:      time.Now().UTC(),
		Status:    status,
	}
	if err := s.AddGift(c, gift); err != nil {
		h.handleError(c, err, "AddGift")
		return
	}
	c.JSON(http.StatusCreated, gift)
}

func (h *PlannerHandler) UpdateGiftStatus(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	giftID, err := uuid.Parse(c.Param("giftID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gift id"})
		return
	}
	var req GiftStatusRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	status := model.GiftStatus(req.Status)
	if !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gift status"})
		return
	}

	if err := s.UpdateGiftStatus(c, giftID, status); err != nil {
		h.handleError(c, err, "UpdateGiftStatus")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlannerHandler) ListMessages(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Messages())
}

// SendMessage records the message as queued and hands it to the outbound
// queue; the delivery worker advances its status from there.
func (h *PlannerHandler) SendMessage(c *gin.Context) {
	s, ok := h.openStore(c)
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	channel := model.MessageChannel(req.Channel)
	if !channel.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channel"})
		return
	}

	eventID := s.Event().ID
	message := model.Message{
		ID:             uuid.New(),
		EventID:        eventID,
		Channel:        channel,
		RecipientName:  req.RecipientName,
		RecipientPhone: req.RecipientPhone,
		Body:           req.Body,
		SentAt:         time.Now().UTC(),
		Status:         model.DeliveryQueued,
	}
	if err := s.AddMessage(c, message); err != nil {
		h.handleError(c, err, "SendMessage")
		return
	}
	if err := h.outbox.Publish(c, &queue.OutboundMessage{EventID: eventID, Message: message}); err != nil {
		h.handleError(c, err, "SendMessage")
		return
	}
	c.JSON(http.StatusAccepted, message)
}

// authorizeEvent parses :id and checks the signed-in user may manage the
// event.
func (h *PlannerHandler) authorizeEvent(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return uuid.Nil, false
	}
	event, err := h.events.FindByID(c, id)
	if err != nil {
		h.handleError(c, err, "authorizeEvent")
		return uuid.Nil, false
	}
	if !canManageEvent(currentUser(c), event.OwnerID.String()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *PlannerHandler) openStore(c *gin.Context) (*store.EventStore, bool) {
	eventID, ok := h.authorizeEvent(c)
	if !ok {
		return nil, false
	}
	s, err := h.planner.Open(c, eventID)
	if err != nil {
		h.handleError(c, err, "openStore")
		return nil, false
	}
	return s, true
}

func (h *PlannerHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrGuestNotFound):
		log.Warn("Guest not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Guest not found"})
	case errors.Is(err, apperrors.ErrTableFull):
		log.Warn("Table full")
		c.JSON(http.StatusConflict, gin.H{"error": "Table is at capacity"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
