package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SezimOrozobekova/velox-backend/internal/calendar"
	"github.com/SezimOrozobekova/velox-backend/internal/domain"
	"github.com/SezimOrozobekova/velox-backend/internal/log"
	"github.com/SezimOrozobekova/velox-backend/internal/metrics"
	"github.com/SezimOrozobekova/velox-backend/internal/queue"
	"github.com/SezimOrozobekova/velox-backend/internal/repo"
)

// taskReq uses pointers so PATCH can tell "absent" from "zero". Owner is
// never client-writable.
type taskReq struct {
	Title     *string `json:"title"`
	Category  *string `json:"category"`
	Date      *string `json:"date"`
	TimeStart *string `json:"time_start"`
	TimeEnd   *string `json:"time_end"`
	Frequency *string `json:"frequency"`
	Reminder  *bool   `json:"reminder"`
	Location  *string `json:"location"`
	Notes     *string `json:"notes"`
}

// resolveCategory re-validates a submitted category id against the
// caller's own categories. A foreign or unknown id is a client error.
func (h *Handler) resolveCategory(c *gin.Context, uid primitive.ObjectID, raw string) (*primitive.ObjectID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return nil, false
	}
	cat, err := h.Store.FindCategory(c.Request.Context(), uid, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return nil, false
	}
	if cat == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category does not belong to the user"})
		return nil, false
	}
	return &cat.ID, true
}

// ListTasks godoc
// @Summary List the caller's tasks
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Param search query string false "match title, notes or category name"
// @Param ordering query string false "date | time_start | created_at, '-' for descending"
// @Success 200 {array} domain.Task
// @Router /api/tasks [get]
func (h *Handler) ListTasks(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	items, err := h.Store.ListTasks(c.Request.Context(), uid, repo.TaskQuery{
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if items == nil {
		items = []domain.Task{}
	}
	c.JSON(http.StatusOK, items)
}

// CreateTask godoc
// @Summary Create a task and mirror it to the connected calendar
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body taskReq true "task"
// @Success 201 {object} domain.Task
// @Failure 400 {object} map[string]string
// @Router /api/tasks [post]
func (h *Handler) CreateTask(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var in taskReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}

	t := &domain.Task{
		UserID:    uid,
		Title:     strings.TrimSpace(*in.Title),
		Frequency: domain.FrequencyNone,
	}
	if in.Category != nil {
		catID, ok := h.resolveCategory(c, uid, *in.Category)
		if !ok {
			return
		}
		t.CategoryID = catID
	}
	if in.Date != nil {
		t.Date = strings.TrimSpace(*in.Date)
	}
	if in.TimeStart != nil {
		t.TimeStart = strings.TrimSpace(*in.TimeStart)
	}
	if in.TimeEnd != nil {
		t.TimeEnd = strings.TrimSpace(*in.TimeEnd)
	}
	if in.Frequency != nil {
		f := strings.ToLower(strings.TrimSpace(*in.Frequency))
		if !domain.ValidFrequency(f) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "frequency must be one of none, daily, weekly, monthly, yearly"})
			return
		}
		t.Frequency = f
	}
	if in.Reminder != nil {
		t.Reminder = *in.Reminder
	}
	if in.Location != nil {
		t.Location = *in.Location
	}
	if in.Notes != nil {
		t.Notes = *in.Notes
	}

	if err := h.Store.CreateTask(c.Request.Context(), t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	// outlives the request: the publish must not die with the handler
	evCtx := context.WithoutCancel(c.Request.Context())
	go func() {
		if err := h.Events.Publish(evCtx, "velox.events", "task.created",
			queue.TaskCreated{UserID: uid, TaskID: t.ID, Title: t.Title},
			c.GetString(ctxReqIDKey)); err != nil {
			log.Errorf("publish task.created for task %s: %v", t.ID.Hex(), err)
		}
	}()

	// the task is durable at this point; sync is best effort but its
	// failure is surfaced, not swallowed
	if h.Syncer != nil {
		switch err := h.Syncer.Sync(c.Request.Context(), uid, t); {
		case err == nil:
			metrics.CalendarSyncTotal.WithLabelValues("ok").Inc()
		case errors.Is(err, calendar.ErrNoCredential):
			metrics.CalendarSyncTotal.WithLabelValues("skipped").Inc()
		default:
			metrics.CalendarSyncTotal.WithLabelValues("failed").Inc()
			log.Errorf("calendar sync for task %s: %v", t.ID.Hex(), err)
			c.JSON(http.StatusCreated, gin.H{"task": t, "sync_error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTask(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	t, err := h.Store.FindTask(c.Request.Context(), uid, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

// UpdateTask handles PUT and PATCH: fields present in the payload are
// applied, everything else keeps its stored value.
func (h *Handler) UpdateTask(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	t, err := h.Store.FindTask(c.Request.Context(), uid, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	var in taskReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
			return
		}
		t.Title = title
	}
	if in.Category != nil {
		catID, ok := h.resolveCategory(c, uid, *in.Category)
		if !ok {
			return
		}
		t.CategoryID = catID
	}
	if in.Date != nil {
		t.Date = strings.TrimSpace(*in.Date)
	}
	if in.TimeStart != nil {
		t.TimeStart = strings.TrimSpace(*in.TimeStart)
	}
	if in.TimeEnd != nil {
		t.TimeEnd = strings.TrimSpace(*in.TimeEnd)
	}
	if in.Frequency != nil {
		f := strings.ToLower(strings.TrimSpace(*in.Frequency))
		if !domain.ValidFrequency(f) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "frequency must be one of none, daily, weekly, monthly, yearly"})
			return
		}
		t.Frequency = f
	}
	if in.Reminder != nil {
		t.Reminder = *in.Reminder
	}
	if in.Location != nil {
		t.Location = *in.Location
	}
	if in.Notes != nil {
		t.Notes = *in.Notes
	}

	if err := h.Store.ReplaceTask(c.Request.Context(), t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	deleted, err := h.Store.DeleteTask(c.Request.Context(), uid, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
