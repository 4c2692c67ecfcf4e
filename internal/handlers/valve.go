package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"irrigation_valve/internal/models"
	"irrigation_valve/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	kindInternal = "Internal"
)

// httpStatus maps an error kind to its HTTP status code.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrModeConflict),
		errors.Is(err, service.ErrOverheatCooldown),
		errors.Is(err, service.ErrInvalidSchedule):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrClockNotSet),
		errors.Is(err, service.ErrPersistenceBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Centralized error logging and response. The body is "<Kind>: <message>".
// Rejected requests are logged at info, everything else at error.
func (h *Handler) logAndTextError(c *gin.Context, err error, logKey string, kv ...interface{}) {
	kind := service.Kind(err)
	if kind == "" {
		kind = kindInternal
	}
	code := httpStatus(err)
	if h.log != nil {
		fields := append([]interface{}{"err", err, "kind", kind}, kv...)
		if code >= http.StatusInternalServerError && !errors.Is(err, service.ErrClockNotSet) {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}
	c.String(code, "%s: %s", kind, err.Error())
}

// respondApplied answers a mutating request. A persistence error still reports the
// applied state: the valve already changed and the operator must not be told otherwise.
// A lock timeout applied nothing and reports no state.
func (h *Handler) respondApplied(c *gin.Context, result string, err error, logKey string) {
	if err == nil {
		c.String(http.StatusOK, result)
		return
	}
	if service.IsPersistence(err) {
		h.logAndTextError(c, fmt.Errorf("%w (applied: %s)", err, result), logKey)
		return
	}
	h.logAndTextError(c, err, logKey)
}

// currentStatus returns the controller snapshot enriched with transport details.
func (h *Handler) currentStatus(ctx context.Context) (models.Status, error) {
	st, err := h.services.Monitoring.Status(ctx)
	if err != nil {
		return models.Status{}, err
	}
	if h.signal != nil {
		if q, ok := h.signal.SignalQuality(); ok {
			st.SignalQuality = &q
		}
	}
	return st, nil
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Valve status
// @Description  Flat snapshot of the valve plus clock trust and link quality
// @Tags         valve
// @Produce      json
// @Success      200  {object}  models.Status
// @Failure      503  {string}  string  "PersistenceBusy: ..."
// @Router       /status [get]
func (h *Handler) getStatus(c *gin.Context) {
	st, err := h.currentStatus(c.Request.Context())
	if err != nil {
		h.logAndTextError(c, err, "valve_status_failed")
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Toggle valve
// @Description  Manual mode only. Returns the new state as ON or OFF.
// @Tags         valve
// @Produce      plain
// @Success      200  {string}  string  "ON"
// @Failure      409  {string}  string  "ModeConflict: ..."
// @Failure      500  {string}  string  "PersistenceFailed: ..."
// @Failure      503  {string}  string  "PersistenceBusy: ..."
// @Router       /toggle [get]
func (h *Handler) toggle(c *gin.Context) {
	st, err := h.services.Valve.Toggle(c.Request.Context())
	h.respondApplied(c, st.ValveLabel(), err, "valve_toggle_failed")
}

// @Summary      Set mode
// @Description  automatic requires a synchronized clock and a non-empty schedule
// @Tags         valve
// @Produce      plain
// @Param        mode  query     string  true  "manual or automatic"
// @Success      200   {string}  string  "automatic"
// @Failure      400   {string}  string  "InvalidRange: ..."
// @Failure      409   {string}  string  "InvalidSchedule: ..."
// @Failure      503   {string}  string  "ClockNotSet: ..."
// @Router       /mode [get]
func (h *Handler) setMode(c *gin.Context) {
	mode, err := models.ParseMode(c.Query("mode"))
	if err != nil {
		h.logAndTextError(c, fmt.Errorf("%w: %v", service.ErrInvalidRange, err), "valve_set_mode_rejected")
		return
	}
	st, err := h.services.Valve.SetMode(c.Request.Context(), mode)
	h.respondApplied(c, string(st.Mode), err, "valve_set_mode_failed")
}

// @Summary      Set schedule
// @Description  Daily on-window. stop earlier than start spans midnight; start equal to stop is rejected.
// @Tags         valve
// @Produce      plain
// @Param        startHour    query     int  true  "0-23"
// @Param        startMinute  query     int  true  "0-59"
// @Param        stopHour     query     int  true  "0-23"
// @Param        stopMinute   query     int  true  "0-59"
// @Success      200          {string}  string  "22:00-06:00"
// @Failure      400          {string}  string  "InvalidRange: ..."
// @Router       /schedule [get]
func (h *Handler) setSchedule(c *gin.Context) {
	sched, err := parseSchedule(c)
	if err != nil {
		h.logAndTextError(c, err, "valve_set_schedule_rejected")
		return
	}
	applied, err := h.services.Valve.SetSchedule(c.Request.Context(), sched)
	h.respondApplied(c, applied.String(), err, "valve_set_schedule_failed")
}

func parseSchedule(c *gin.Context) (models.Schedule, error) {
	var vals [4]int
	for i, name := range []string{"startHour", "startMinute", "stopHour", "stopMinute"} {
		raw, ok := c.GetQuery(name)
		if !ok {
			return models.Schedule{}, fmt.Errorf("%w: %s is required", service.ErrInvalidRange, name)
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return models.Schedule{}, fmt.Errorf("%w: %s=%q is not an integer", service.ErrInvalidRange, name, raw)
		}
		vals[i] = v
	}
	return models.Schedule{
		Start: models.TimeOfDay{Hour: vals[0], Minute: vals[1]},
		Stop:  models.TimeOfDay{Hour: vals[2], Minute: vals[3]},
	}, nil
}
