// Package httpapi exposes the tap engine and schedule authoring over gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taptrack/internal/civil"
	"taptrack/internal/presence"
	"taptrack/internal/queue"
	"taptrack/internal/roster"
	"taptrack/internal/schedule"
	"taptrack/internal/tap"
)

// RecordLister reads attendance records.
type RecordLister interface {
	List(ctx context.Context, teacherID, classroomID, date string, limit, offset int) ([]tap.Record, error)
}

// EntryLister reads schedule entries.
type EntryLister interface {
	List(ctx context.Context, classroomID, day string) ([]schedule.Entry, error)
}

// RosterReader reads reference data.
type RosterReader interface {
	ListTeachers(ctx context.Context) ([]roster.Teacher, error)
	ListClassrooms(ctx context.Context) ([]roster.Classroom, error)
}

// PresenceReader reads the live board.
type PresenceReader interface {
	List(ctx context.Context, classroomID string) ([]presence.Session, error)
}

// Handler carries the request handlers' dependencies.
type Handler struct {
	engine    *tap.Engine
	schedules *schedule.Service
	entries   EntryLister
	records   RecordLister
	roster    RosterReader
	board     PresenceReader
	taps      queue.Queue
}

// New wires a handler.
func New(engine *tap.Engine, schedules *schedule.Service, entries EntryLister, records RecordLister, ros RosterReader, board PresenceReader, taps queue.Queue) *Handler {
	return &Handler{
		engine:    engine,
		schedules: schedules,
		entries:   entries,
		records:   records,
		roster:    ros,
		board:     board,
		taps:      taps,
	}
}

// Register mounts the authenticated routes on a router group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.POST("/rfid/tap-in", h.TapIn)
	g.POST("/rfid/tap-out", h.TapOut)
	g.GET("/attendance", h.ListAttendance)
	g.GET("/teachers", h.ListTeachers)
	g.GET("/classrooms", h.ListClassrooms)
	g.GET("/presence/:classroomID", h.Presence)
	g.GET("/schedules", h.ListSchedules)
	g.POST("/schedules", h.CreateSchedule)
	g.PUT("/schedules/:id", h.UpdateSchedule)
	g.DELETE("/schedules/:id", h.DeleteSchedule)
}

// ---------- Taps ----------

// TapIn handles a badge scan at a classroom terminal.
func (h *Handler) TapIn(c *gin.Context) {
	var req struct {
		BadgeID     string `json:"badge_id" binding:"required"`
		ClassroomID string `json:"classroom_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	res, err := h.engine.TapIn(c.Request.Context(), req.BadgeID, req.ClassroomID)
	if err != nil {
		h.tapError(c, err)
		return
	}

	h.publish(c, queue.TapEvent{Kind: queue.KindTapIn, RecordID: res.RecordID})

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   fmt.Sprintf("Welcome %s!", res.Teacher),
		"teacher":   res.Teacher,
		"subject":   res.Subject,
		"time":      res.Time.Format("15:04:05"),
		"record_id": res.RecordID,
	})
}

// TapOut closes the badge holder's open session.
func (h *Handler) TapOut(c *gin.Context) {
	var req struct {
		BadgeID string `json:"badge_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	res, err := h.engine.TapOut(c.Request.Context(), req.BadgeID)
	if err != nil {
		h.tapError(c, err)
		return
	}

	h.publish(c, queue.TapEvent{Kind: queue.KindTapOut, RecordID: res.RecordID})

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          fmt.Sprintf("Goodbye %s!", res.Teacher),
		"teacher":          res.Teacher,
		"duration":         formatDuration(res.DurationMinutes),
		"duration_minutes": res.DurationMinutes,
		"time":             res.Time.Format("15:04:05"),
	})
}

// tapError maps domain failures to responses the terminal can show. Anything
// not a domain failure is a store problem: the terminal should say "retry",
// not "scan again".
func (h *Handler) tapError(c *gin.Context, err error) {
	var outside *tap.OutsideScheduleError
	switch {
	case errors.Is(err, tap.ErrUnknownBadge):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "invalid badge or teacher not found"})
	case errors.Is(err, tap.ErrAlreadyActive):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "already tapped in today"})
	case errors.As(err, &outside):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": outside.Reason, "windows": outside.Windows})
	case errors.Is(err, tap.ErrNoActiveSession):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "no active session found for today"})
	default:
		log.Printf("tap store failure: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "storage unavailable, please retry"})
	}
}

func (h *Handler) publish(c *gin.Context, evt queue.TapEvent) {
	if h.taps == nil {
		return
	}
	if err := h.taps.Publish(c.Request.Context(), evt); err != nil {
		log.Printf("queue publish failed: %v", err)
	}
}

func formatDuration(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// ---------- Attendance & roster ----------

// ListAttendance returns records with basic filters.
func (h *Handler) ListAttendance(c *gin.Context) {
	limit, offset := 50, 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	records, err := h.records.List(c.Request.Context(), c.Query("teacher_id"), c.Query("classroom_id"), c.Query("date"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// ListTeachers returns the roster.
func (h *Handler) ListTeachers(c *gin.Context) {
	teachers, err := h.roster.ListTeachers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"teachers": teachers})
}

// ListClassrooms returns active classrooms.
func (h *Handler) ListClassrooms(c *gin.Context) {
	classrooms, err := h.roster.ListClassrooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"classrooms": classrooms})
}

// Presence returns the classroom's live board.
func (h *Handler) Presence(c *gin.Context) {
	sessions, err := h.board.List(c.Request.Context(), c.Param("classroomID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// ---------- Schedule authoring ----------

type scheduleRequest struct {
	TeacherID   string `json:"teacher_id" binding:"required"`
	ClassroomID string `json:"classroom_id" binding:"required"`
	Day         string `json:"day" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	Subject     string `json:"subject" binding:"required"`
}

func (r scheduleRequest) toEntry(id string) (schedule.Entry, error) {
	start, err := civil.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return schedule.Entry{}, err
	}
	end, err := civil.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return schedule.Entry{}, err
	}
	day, err := civil.ParseDay(r.Day)
	if err != nil {
		return schedule.Entry{}, err
	}
	return schedule.Entry{
		ID:          id,
		TeacherID:   r.TeacherID,
		ClassroomID: r.ClassroomID,
		Day:         day,
		Start:       start,
		End:         end,
		Subject:     r.Subject,
	}, nil
}

// ListSchedules returns entries with optional classroom/day filters.
func (h *Handler) ListSchedules(c *gin.Context) {
	entries, err := h.entries.List(c.Request.Context(), c.Query("classroom_id"), c.Query("day"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": entries})
}

// CreateSchedule inserts an entry, rejecting classroom/day overlaps.
func (h *Handler) CreateSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := req.toEntry("")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.schedules.Create(c.Request.Context(), entry)
	if err != nil {
		h.scheduleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateSchedule rewrites an entry, re-running the overlap check.
func (h *Handler) UpdateSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := req.toEntry(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.schedules.Update(c.Request.Context(), entry)
	if err != nil {
		h.scheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteSchedule soft-deactivates an entry.
func (h *Handler) DeleteSchedule(c *gin.Context) {
	if err := h.schedules.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.scheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) scheduleError(c *gin.Context, err error) {
	var conflict *schedule.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":       "schedule conflict: classroom already booked during that time",
			"conflict_id": conflict.Existing.ID,
			"window":      conflict.Existing.Window(),
		})
	case errors.Is(err, schedule.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule entry not found"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
