package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/emryildiz/barberbot/internal/domain"
	"github.com/emryildiz/barberbot/internal/models"
	"github.com/emryildiz/barberbot/internal/service"
	"github.com/emryildiz/barberbot/internal/timeutil"
)

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := s.scheduler.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appointments})
}

type createAppointmentRequest struct {
	StaffID       int64     `json:"staff_id"`
	ServiceID     int64     `json:"service_id"`
	StartTime     time.Time `json:"start_time"`
	CustomerID    int64     `json:"customer_id,omitempty"`
	CustomerName  string    `json:"customer_name,omitempty"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
}

// handleCreateAppointment books on behalf of a walk-in or phone customer.
// The end time always derives from the service duration.
func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.StartTime.IsZero() {
		writeError(w, http.StatusBadRequest, "start_time is required")
		return
	}

	svc, err := s.catalog.GetService(r.Context(), req.ServiceID)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("service %d not found", req.ServiceID))
		return
	}

	start := req.StartTime.UTC()
	appointment, err := s.scheduler.Create(r.Context(), domain.CreateAppointmentInput{
		StaffID:          req.StaffID,
		ServiceID:        req.ServiceID,
		StartUTC:         start,
		EndUTC:           start.Add(time.Duration(svc.DurationMinutes) * time.Minute),
		CustomerID:       req.CustomerID,
		NewCustomerName:  req.CustomerName,
		NewCustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appointment)
}

func (s *Server) handleGetAppointment(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	appointment, err := s.scheduler.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appointment)
}

type updateAppointmentRequest struct {
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Status    string     `json:"status"`
}

// handleUpdateAppointment is the operator override: status changes and manual
// reschedules, validated only for a known status value.
func (s *Server) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var req updateAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch req.Status {
	case models.StatusPending, models.StatusConfirmed, models.StatusCancelled:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
		return
	}

	id := pathID(r)
	existing, err := s.scheduler.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	start, end := existing.StartTime, existing.EndTime
	if req.StartTime != nil {
		start = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		end = req.EndTime.UTC()
	}
	if !end.After(start) {
		writeError(w, http.StatusBadRequest, "end_time must be after start_time")
		return
	}

	updated, err := s.scheduler.UpdateStatus(r.Context(), id, start, end, req.Status)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := s.scheduler.Delete(r.Context(), pathID(r)); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAvailableSlots answers ?barber_id=&service_id=&date=YYYY-MM-DD. A
// closed day is a normal answer, not an error.
func (s *Server) handleAvailableSlots(w http.ResponseWriter, r *http.Request) {
	barberID, err := strconv.ParseInt(r.URL.Query().Get("barber_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "barber_id is required")
		return
	}
	serviceID, err := strconv.ParseInt(r.URL.Query().Get("service_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "service_id is required")
		return
	}
	dateStr := r.URL.Query().Get("date")
	date, err := time.ParseInLocation("2006-01-02", dateStr, timeutil.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	slots, err := s.slots.AvailableSlots(r.Context(), barberID, serviceID, date)
	if err != nil {
		if errors.Is(err, service.ErrClosed) {
			writeJSON(w, http.StatusOK, map[string]any{"date": dateStr, "closed": true, "slots": []string{}})
			return
		}
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": dateStr, "closed": false, "slots": slots})
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	services, err := s.catalog.ListActiveServices(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

func (s *Server) handleListBarbers(w http.ResponseWriter, r *http.Request) {
	barbers, err := s.catalog.ListBookableStaff(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"barbers": barbers})
}

func (s *Server) handleListWorkingHours(w http.ResponseWriter, r *http.Request) {
	hours, err := s.hours.ListWorkingHours(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"working_hours": hours})
}

type workingHourRequest struct {
	IsClosed  bool   `json:"is_closed"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}

func (s *Server) handleUpsertWorkingHour(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(mux.Vars(r)["day"])
	if err != nil || day < 0 || day > 6 {
		writeError(w, http.StatusBadRequest, "day must be 0 (Sunday) through 6 (Saturday)")
		return
	}

	var req workingHourRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.IsClosed {
		open, err := timeutil.ParseTimeOfDay(req.OpenTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid open_time")
			return
		}
		closeAt, err := timeutil.ParseTimeOfDay(req.CloseTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid close_time")
			return
		}
		if closeAt <= open {
			writeError(w, http.StatusBadRequest, "close_time must be after open_time")
			return
		}
	}

	wh := &models.WorkingHour{
		DayOfWeek: day,
		IsClosed:  req.IsClosed,
		OpenTime:  req.OpenTime,
		CloseTime: req.CloseTime,
	}
	if err := s.hours.UpsertWorkingHour(r.Context(), wh); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wh)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Dashboard(r.Context(), queryDays(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleServiceBreakdown(w http.ResponseWriter, r *http.Request) {
	shares, err := s.stats.ServiceBreakdown(r.Context(), queryDays(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": shares})
}

func (s *Server) handleExportAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := s.scheduler.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.exporter.WriteReport(r.Context(), &buf, appointments); err != nil {
		s.logger.Error().Err(err).Msg("failed to build export")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.saveExportCopy(buf.Bytes())

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="randevular.xlsx"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error().Err(err).Msg("failed to write export response")
	}
}

// saveExportCopy keeps a timestamped copy of each downloaded report in the
// configured exports directory. Best effort: a full disk must not break the
// download itself.
func (s *Server) saveExportCopy(data []byte) {
	dir := s.cfg.Exports.Path
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error().Err(err).Str("dir", dir).Msg("failed to create exports directory")
		return
	}
	path := filepath.Join(dir, fmt.Sprintf("randevular-%s.xlsx", time.Now().UTC().Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to save export copy")
		return
	}
	s.logger.Info().Str("path", path).Msg("export copy saved")
}

// writeServiceError maps scheduler errors to HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrOverlap):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrClosed),
		errors.Is(err, service.ErrOutsideHours),
		errors.Is(err, service.ErrMissingCustomer),
		errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func queryDays(r *http.Request) int {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	return days
}
