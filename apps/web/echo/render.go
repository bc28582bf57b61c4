package echoweb

import (
	"bytes"
	"encoding/json"
	"fmt"
	htmltmpl "html/template"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/notification"
	"github.com/telepoint/backoffice/core/operator"
)

var (
	webTemplates map[string]*htmltmpl.Template
	webTmplInit  sync.Once
)

// bareTemplates render without the application layout (no nav, no badge).
var bareTemplates = map[string]bool{
	"login":     true,
	"login_mfa": true,
	"receipt":   true,
}

type pageContext struct {
	Title    string
	Path     string
	Operator operator.Operator

	// Toasts is the popped queue serialized for the page script; delivered
	// exactly once per render.
	Toasts     []core.Notice
	ToastsJSON htmltmpl.JS

	Badge notification.Feed

	Data echo.Map
}

func parseWebTemplates() {
	webTemplates = make(map[string]*htmltmpl.Template)

	rp := filepath.Join(core.Conf.WorkDir, "assets", "templates", "web")
	fps, err := filepath.Glob(filepath.Join(rp, "*.gohtml"))
	if err != nil {
		log.Print(fmt.Errorf("echoweb.parseWebTemplates: %v", err))
	}

	for _, fp := range fps {
		fname := filepath.Base(fp)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		name := strings.TrimSuffix(fname, ".gohtml")

		var tmpl *htmltmpl.Template
		if bareTemplates[name] {
			tmpl, err = htmltmpl.ParseFiles(fp)
		} else {
			tmpl, err = htmltmpl.ParseFiles(filepath.Join(rp, "_base.gohtml"), fp)
		}
		if err != nil {
			log.Print(fmt.Errorf("echoweb.parseWebTemplates: %v", err))
			continue
		}
		if core.Conf.Debug || core.Conf.TestMode {
			tmpl = tmpl.Option("missingkey=error")
		}
		webTemplates[name] = tmpl
	}
}

// render executes a layout page. The session toast queue is popped here -
// every page render, successful or not, drains it exactly once.
func (s *server) render(ctx echo.Context, name, title string, data echo.Map, extra ...*core.Notice) error {
	webTmplInit.Do(parseWebTemplates)

	sess := s.sessions.Open(ctx)
	toasts := sess.PopNotices()
	for _, n := range extra {
		if n = normalizedNotice(n); n != nil {
			toasts = append(toasts, *n)
		}
	}

	pc := pageContext{
		Title:  title,
		Path:   ctx.Request().URL.Path,
		Toasts: toasts,
		Data:   data,
	}
	if op, err := contextOperator(ctx); err == nil {
		pc.Operator = op
		if feed, fErr := s.opts.NotificationSvc.BadgeFeed(op.ID); fErr == nil {
			pc.Badge = feed
		} else {
			s.opts.Logger.Error("loading notification badge", fErr, op)
		}
	}
	if raw, err := json.Marshal(toasts); err == nil {
		pc.ToastsJSON = htmltmpl.JS(raw)
	}

	return s.execute(ctx, name, pc)
}

// renderBare executes a standalone page (login, receipt) without the layout.
// The toast queue is still popped so pre-auth notices reach the user.
func (s *server) renderBare(ctx echo.Context, name string, data echo.Map) error {
	webTmplInit.Do(parseWebTemplates)

	sess := s.sessions.Open(ctx)
	toasts := sess.PopNotices()

	pc := pageContext{
		Path:   ctx.Request().URL.Path,
		Toasts: toasts,
		Data:   data,
	}
	if title, ok := data["Title"].(string); ok {
		pc.Title = title
	}
	if raw, err := json.Marshal(toasts); err == nil {
		pc.ToastsJSON = htmltmpl.JS(raw)
	}

	return s.execute(ctx, name, pc)
}

func (s *server) execute(ctx echo.Context, name string, pc pageContext) error {
	tmpl, ok := webTemplates[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, pc); err != nil {
		return errors.Wrapf(err, "rendering %q", name)
	}
	return ctx.HTMLBlob(http.StatusOK, buff.Bytes())
}

func normalizedNotice(n *core.Notice) *core.Notice {
	if n == nil {
		return nil
	}
	return core.NormalizeNotice(*n)
}

// respondRefresh answers an AJAX table refresh with the row window and its
// clamped pagination.
func respondRefresh(ctx echo.Context, rows interface{}, p core.Pagination) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"payload": echo.Map{"rows": rows, "pagination": p},
	})
}

// redirectWithFeedback implements the POST-redirect-GET tail: queue the toast,
// bounce to target.
func (s *server) redirectWithFeedback(ctx echo.Context, target string, fb core.Feedback, overrides ...core.NoticeOverrides) error {
	sess := s.sessions.Open(ctx)
	sess.PushNotice(core.NoticeFromFeedback(fb, overrides...))
	return ctx.Redirect(http.StatusSeeOther, target)
}

// unknownAction is the PRG fallback for unrecognized action params.
func (s *server) unknownAction(ctx echo.Context, target string) error {
	return s.redirectWithFeedback(ctx, target, core.FailFeedback("Azione non riconosciuta."))
}
