package echoweb

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/notification"
)

func (s *server) notificationsPage(ctx echo.Context) error {
	filter := notification.QueryFilter{
		Search:     ctx.QueryParam("search"),
		Pagination: bindPagination(ctx),
	}
	rows, total, err := s.opts.NotificationSvc.Filter(filter)
	if err != nil {
		return err
	}
	filter.Pagination.Total = total

	if isRefresh(ctx) {
		return respondRefresh(ctx, rows, filter.Pagination)
	}
	return s.render(ctx, "notifications", "Notifiche", echo.Map{
		"Notifications": rows,
		"Pagination":    filter.Pagination,
		"Search":        filter.Search,
	})
}

func (s *server) notificationsReadAll(ctx echo.Context) error {
	op, err := contextOperator(ctx)
	if err != nil {
		return err
	}
	if err := s.opts.NotificationSvc.MarkAllRead(op.ID); err != nil {
		return err
	}
	if isAJAX(ctx) {
		return ctx.JSON(http.StatusOK, core.OKFeedback(""))
	}
	return ctx.Redirect(http.StatusSeeOther, "/notifications")
}

type streamEvent struct {
	UnreadCount int `json:"unread_count"`
	LastID      int `json:"last_id"`
}

// notificationsStream pushes unread-badge updates over server-sent events.
// The feed is polled on a fixed interval and the stream is capped so stale
// tabs reconnect instead of pinning a connection forever.
func (s *server) notificationsStream(ctx echo.Context) error {
	op, err := contextOperator(ctx)
	if err != nil {
		return err
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	flusher, ok := res.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}

	send := func(event string, payload interface{}) error {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, raw); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	// a notifications event goes out when the feed high-water mark moved; the
	// heartbeat follows on every iteration so clients can track liveness
	emit := func(lastSent int) (int, error) {
		unread, err := s.opts.NotificationSvc.UnreadCount(op.ID)
		if err != nil {
			return lastSent, err
		}
		feed, err := s.opts.NotificationSvc.BadgeFeed(op.ID)
		if err != nil {
			return lastSent, err
		}
		if feed.LastID != lastSent {
			if err := send("notifications", streamEvent{UnreadCount: unread, LastID: feed.LastID}); err != nil {
				return lastSent, err
			}
			lastSent = feed.LastID
		}
		return lastSent, send("heartbeat", echo.Map{"time": time.Now().UTC().Format(time.RFC3339)})
	}

	// first event goes out immediately so the badge is fresh on page load
	lastSent, err := emit(-1)
	if err != nil {
		return nil
	}

	deadline := s.nowFunc().Add(core.Conf.Notifications.MaxStreamDuration)
	ticker := time.NewTicker(core.Conf.Notifications.PollInterval)
	defer ticker.Stop()

	reqCtx := ctx.Request().Context()
	for {
		select {
		case <-reqCtx.Done():
			return nil
		case <-s.shutdown:
			return nil
		case <-ticker.C:
			if !s.nowFunc().Before(deadline) {
				return nil
			}
			if lastSent, err = emit(lastSent); err != nil {
				return nil
			}
		}
	}
}
