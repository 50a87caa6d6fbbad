package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/fit-tracker/internal/logger"
	"github.com/sbilibin2017/fit-tracker/internal/middlewares"
	"github.com/sbilibin2017/fit-tracker/internal/models"
	"github.com/sbilibin2017/fit-tracker/internal/services"
)

// DatapointServicer defines the interface a metric family service must
// implement. One service instance per family; the handler set below is
// mounted once per family under /data.
type DatapointServicer interface {
	Metric() models.Metric
	List(ctx context.Context, ownerID int64, limit, offset int) ([]models.DatapointDB, error)
	Get(ctx context.Context, ownerID int64, date time.Time) (*models.DatapointDB, error)
	Create(ctx context.Context, ownerID int64, date time.Time, value float64, name *string, reps *int64) (*models.DatapointDB, error)
	Update(ctx context.Context, ownerID int64, date time.Time, value float64, name *string, reps *int64) (*models.DatapointDB, error)
	Delete(ctx context.Context, ownerID int64, date time.Time) error
}

// DatapointRequest represents the JSON body for recording a sample
// swagger:model DatapointRequest
type DatapointRequest struct {
	// Calendar day of the sample
	// required: true
	// default: 2024-05-01
	Date *string `json:"date"`

	// Sample value
	// required: true
	// default: 80
	Datapoint *float64 `json:"datapoint"`

	// Exercise name, required for the exercise family only
	// default: squat
	Name *string `json:"name"`

	// Repetitions, required for the exercise family only
	// default: 12
	Reps *int64 `json:"reps"`
}

const dateLayout = "2006-01-02"

// NewListDatapointsHandler returns an HTTP handler for listing the caller's
// samples of one metric family. An empty page is reported as 404.
// @Summary List samples of a metric family
// @Tags data
// @Produce json
// @Param family path string true "Metric family" Enums(weight, calories, steps, exercise)
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Rows to skip" default(0)
// @Success 200 {array} models.DatapointDB "Samples in date order"
// @Failure 401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure 404 {object} handlers.ErrorResponse "No samples recorded"
// @Router /data/{family} [get]
// @Security BearerAuth
func NewListDatapointsHandler(svc DatapointServicer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middlewares.GetUserFromContext(r.Context())
		if viewer == nil {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		limit := 10
		offset := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				writeDetail(w, http.StatusUnprocessableEntity, "Invalid limit")
				return
			}
			limit = v
		}
		if raw := r.URL.Query().Get("offset"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				writeDetail(w, http.StatusUnprocessableEntity, "Invalid offset")
				return
			}
			offset = v
		}

		entries, err := svc.List(r.Context(), viewer.ID, limit, offset)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrDatapointNotFound):
				writeDetail(w, http.StatusNotFound,
					fmt.Sprintf("No %s data with the given criteria found", svc.Metric().Name))
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, entries)
	}
}

// NewCreateDatapointHandler returns an HTTP handler for recording a sample.
// At most one sample per day and family is allowed.
// @Summary Record a sample
// @Tags data
// @Accept json
// @Produce json
// @Param family path string true "Metric family" Enums(weight, calories, steps, exercise)
// @Param datapointRequest body handlers.DatapointRequest true "Sample to record"
// @Success 201 {object} models.DatapointDB "Recorded sample"
// @Failure 400 {object} handlers.ErrorResponse "A sample already exists for this date"
// @Failure 401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure 422 {object} handlers.ErrorResponse "Missing or malformed field"
// @Router /data/{family} [post]
// @Security BearerAuth
func NewCreateDatapointHandler(svc DatapointServicer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middlewares.GetUserFromContext(r.Context())
		if viewer == nil {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		date, req, ok := decodeDatapointRequest(w, r, svc.Metric())
		if !ok {
			return
		}

		entry, err := svc.Create(r.Context(), viewer.ID, date, *req.Datapoint, req.Name, req.Reps)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrDatapointExists):
				writeDetail(w, http.StatusBadRequest,
					fmt.Sprintf("%s already recorded for date: %s", svc.Metric().Name, date.Format(dateLayout)))
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, entry)
	}
}

// NewGetDatapointHandler returns an HTTP handler for fetching one day's sample.
// @Summary Get the sample for a date
// @Tags data
// @Produce json
// @Param family path string true "Metric family" Enums(weight, calories, steps, exercise)
// @Param date path string true "Calendar day, YYYY-MM-DD"
// @Success 200 {object} models.DatapointDB "Sample"
// @Failure 401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure 404 {object} handlers.ErrorResponse "No sample for this date"
// @Failure 422 {object} handlers.ErrorResponse "Malformed date"
// @Router /data/{family}/{date} [get]
// @Security BearerAuth
func NewGetDatapointHandler(svc DatapointServicer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middlewares.GetUserFromContext(r.Context())
		if viewer == nil {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		date, ok := datapointDate(w, r)
		if !ok {
			return
		}

		entry, err := svc.Get(r.Context(), viewer.ID, date)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrDatapointNotFound):
				writeDetail(w, http.StatusNotFound, noRecordDetail(svc.Metric(), date))
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, entry)
	}
}

// NewUpdateDatapointHandler returns an HTTP handler for replacing one day's
// sample.
// @Summary Update the sample for a date
// @Tags data
// @Accept json
// @Produce json
// @Param family path string true "Metric family" Enums(weight, calories, steps, exercise)
// @Param date path string true "Calendar day, YYYY-MM-DD"
// @Param datapointRequest body handlers.DatapointRequest true "New sample value"
// @Success 200 {object} models.DatapointDB "Updated sample"
// @Failure 401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure 404 {object} handlers.ErrorResponse "No sample for this date"
// @Failure 422 {object} handlers.ErrorResponse "Missing or malformed field"
// @Router /data/{family}/{date} [put]
// @Security BearerAuth
func NewUpdateDatapointHandler(svc DatapointServicer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middlewares.GetUserFromContext(r.Context())
		if viewer == nil {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		date, ok := datapointDate(w, r)
		if !ok {
			return
		}
		// the body's date field is ignored here, the path wins
		_, req, ok := decodeDatapointRequest(w, r, svc.Metric())
		if !ok {
			return
		}

		entry, err := svc.Update(r.Context(), viewer.ID, date, *req.Datapoint, req.Name, req.Reps)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrDatapointNotFound):
				writeDetail(w, http.StatusNotFound, noRecordDetail(svc.Metric(), date))
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, entry)
	}
}

// NewDeleteDatapointHandler returns an HTTP handler for deleting one day's
// sample.
// @Summary Delete the sample for a date
// @Tags data
// @Param family path string true "Metric family" Enums(weight, calories, steps, exercise)
// @Param date path string true "Calendar day, YYYY-MM-DD"
// @Success 204 "Sample deleted"
// @Failure 401 {object} handlers.ErrorResponse "Not authenticated"
// @Failure 404 {object} handlers.ErrorResponse "No sample for this date"
// @Failure 422 {object} handlers.ErrorResponse "Malformed date"
// @Router /data/{family}/{date} [delete]
// @Security BearerAuth
func NewDeleteDatapointHandler(svc DatapointServicer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := middlewares.GetUserFromContext(r.Context())
		if viewer == nil {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		date, ok := datapointDate(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), viewer.ID, date); err != nil {
			switch {
			case errors.Is(err, services.ErrDatapointNotFound):
				writeDetail(w, http.StatusNotFound, noRecordDetail(svc.Metric(), date))
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func noRecordDetail(metric models.Metric, date time.Time) string {
	return fmt.Sprintf("No %s record exists for date: %s", metric.Name, date.Format(dateLayout))
}

// parseDate accepts a plain calendar day or a full timestamp, which is
// truncated to its day.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(24 * time.Hour), nil
}

func datapointDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	date, err := parseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

func decodeDatapointRequest(w http.ResponseWriter, r *http.Request, metric models.Metric) (time.Time, DatapointRequest, bool) {
	var req DatapointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return time.Time{}, req, false
	}
	if req.Datapoint == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Field required: datapoint")
		return time.Time{}, req, false
	}
	if metric.HasDetails {
		if req.Name == nil || *req.Name == "" {
			writeDetail(w, http.StatusUnprocessableEntity, "Field required: name")
			return time.Time{}, req, false
		}
		if req.Reps == nil {
			writeDetail(w, http.StatusUnprocessableEntity, "Field required: reps")
			return time.Time{}, req, false
		}
	}

	var date time.Time
	if req.Date != nil {
		parsed, err := parseDate(*req.Date)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "Invalid date, expected YYYY-MM-DD")
			return time.Time{}, req, false
		}
		date = parsed
	} else if chi.URLParam(r, "date") == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Field required: date")
		return time.Time{}, req, false
	}

	return date, req, true
}
