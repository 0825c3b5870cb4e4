package handler

import (
	"log/slog"
	"net/http"
	"time"

	"campus/internal/delivery/http/response"
	"campus/internal/domain/entity"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/usecase"

	"github.com/labstack/echo/v4"
)

type eventDay struct {
	Date  string            `json:"date"`
	Phase entity.EventPhase  `json:"phase"`
}

type eventsOnDay struct {
	Date   string            `json:"date"`
	Phase  entity.EventPhase `json:"phase"`
	Events []entity.Post     `json:"events"`
}

// EventHandler serves the calendar view over event posts.
type EventHandler struct {
	store  usecase.StoreUsecase
	logger *slog.Logger
	now    func() time.Time
}

// NewEventHandler is the constructor for EventHandler, injected by Fx.
func NewEventHandler(store usecase.StoreUsecase, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// EventsOn lists the events on ?date=YYYY-MM-DD, today when omitted.
func (h *EventHandler) EventsOn(c echo.Context) error {
	today := entity.DayKey(h.now())

	day := c.QueryParam("date")
	if day == "" {
		day = today
	}
	if _, err := time.Parse(entity.DayLayout, day); err != nil {
		return domainerrors.ErrValidationFailed.Wrapf("date %q is not YYYY-MM-DD", day)
	}

	return response.Success(c, http.StatusOK, eventsOnDay{
		Date:   day,
		Phase:  entity.PhaseOf(day, today),
		Events: h.store.EventsOn(day),
	}, "")
}

// EventDays lists every day that has an event, marked past, ongoing or upcoming.
func (h *EventHandler) EventDays(c echo.Context) error {
	today := entity.DayKey(h.now())

	days := h.store.EventDays()
	marked := make([]eventDay, 0, len(days))
	for _, day := range days {
		marked = append(marked, eventDay{Date: day, Phase: entity.PhaseOf(day, today)})
	}

	return response.Success(c, http.StatusOK, marked, "")
}
