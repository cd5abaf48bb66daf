package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/notification"
	"github.com/gourmand-app/gourmand/pkg/errors"
)

type notificationHandler struct {
	service notification.Service
}

func newNotificationHandler(service notification.Service) *notificationHandler {
	return &notificationHandler{
		service: service,
	}
}

func (h notificationHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Patch("/{recordID}/read", h.markRead)
}

// notificationView wraps one record with its derived unread flag so the
// shell does not reimplement the nil-timestamp rule.
type notificationView struct {
	domain.NotificationRecord
	Unread         bool   `json:"unread"`
	CreatedDisplay string `json:"created_display"`
}

func (v notificationView) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (h notificationHandler) list(w http.ResponseWriter, r *http.Request) {
	records := h.service.List()

	views := make([]render.Renderer, 0, len(records))
	for _, record := range records {
		views = append(views, notificationView{
			NotificationRecord: record,
			Unread:             record.Unread(),
			CreatedDisplay:     displayTime(record.CreatedAt),
		})
	}

	render.Status(r, http.StatusOK)
	if err := render.RenderList(w, r, views); err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, backendError{Message: err.Error()})
	}
}

func (h notificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordID")

	if err := h.service.MarkRead(r.Context(), recordID); err != nil {
		if errors.Is(err, notification.ErrUnknownRecord) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, backendError{Message: "unknown notification"})
			return
		}
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, backendError{Message: err.Error()})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]int{"unread": h.service.UnreadCount()})
}
