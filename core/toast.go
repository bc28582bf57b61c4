package core

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Notice types
const (
	NoticeInfo    = "info"
	NoticeSuccess = "success"
	NoticeWarning = "warning"
	NoticeDanger  = "danger"
)

// toast defaults
const (
	SuccessNoticeDurationMS = 5000
	PersistentNotice        = 0 // a 0 duration keeps the toast on screen until dismissed
)

// user-facing fallback sentences
const (
	GenericSuccessMessage = "Operazione completata con successo."
	GenericFailureMessage = "Si è verificato un errore. Riprovare."
	ErrorDetailPrefix     = "Dettaglio: "
)

type (
	// Notice is the canonical toast shape consumed exactly once by the next page render.
	Notice struct {
		Type        string                 `json:"type"`
		Title       string                 `json:"title,omitempty"`
		Message     string                 `json:"message"`
		DurationMS  int                    `json:"duration_ms"`
		Dismissible bool                   `json:"dismissible"`
		Meta        map[string]interface{} `json:"meta,omitempty"`
	}

	// Feedback is the normalized result shape every service call and form action
	// reports back through; the toast pipeline is its only way to the user.
	Feedback struct {
		Success bool     `json:"success"`
		Message string   `json:"message"`
		Error   string   `json:"error,omitempty"`
		Errors  []string `json:"errors,omitempty"`
	}

	// NoticeOverrides replace normalization defaults field by field. Message, when
	// provided, is trimmed and replaces the computed message rather than merging.
	NoticeOverrides struct {
		Type        string
		Title       string
		Message     string
		DurationMS  *int
		Dismissible *bool
	}
)

func OKFeedback(msg string) Feedback   { return Feedback{Success: true, Message: msg} }
func FailFeedback(msg string) Feedback { return Feedback{Success: false, Message: msg} }

// FeedbackFromError converts the error taxonomy to the canonical Feedback shape:
// field validation errors become one entry per field, anything else a generic failure
// with the cause as detail. Raw errors never reach the browser.
func FeedbackFromError(err error) Feedback {
	switch err := err.(type) {
	case validator.ValidationErrors:
		fb := Feedback{Errors: make([]string, 0, len(err))}
		for _, vErr := range err {
			fb.Errors = append(fb.Errors, vErr.Field()+": "+vErr.Translate(Translator))
		}
		return fb
	case *ValidationError:
		if err.Fields != nil {
			fb := Feedback{Message: err.Error(), Errors: make([]string, 0, len(err.Fields))}
			for _, fErr := range err.Fields {
				fb.Errors = append(fb.Errors, fErr.Field+": "+fErr.Error)
			}
			return fb
		}
		return Feedback{Message: err.Error()}
	default:
		return Feedback{Error: err.Error()}
	}
}

// NewNotice builds a notice from a raw message string; an empty (all-whitespace)
// message produces no notice.
func NewNotice(typ, message string) *Notice {
	n := Notice{
		Type:        typ,
		Message:     message,
		DurationMS:  SuccessNoticeDurationMS,
		Dismissible: true,
	}
	return normalizeNotice(n)
}

// NormalizeNotice applies the canonical-shape invariants to a hand-built notice:
// trimmed non-empty message (dropped otherwise), known type (info otherwise).
func NormalizeNotice(n Notice) *Notice {
	return normalizeNotice(n)
}

// NoticeFromFeedback converts a service result to the canonical toast shape.
// The message concatenates Message, then on failure the error detail and every
// non-empty Errors entry, each on its own line; an empty result falls back to a
// generic sentence keyed by the Success flag. Success notices auto-dismiss after
// 5s; failures stay until dismissed.
func NoticeFromFeedback(fb Feedback, overrides ...NoticeOverrides) *Notice {
	var lines []string
	if msg := strings.TrimSpace(fb.Message); msg != "" {
		lines = append(lines, msg)
	}
	if !fb.Success {
		if detail := strings.TrimSpace(fb.Error); detail != "" {
			lines = append(lines, ErrorDetailPrefix+detail)
		}
		for _, e := range fb.Errors {
			if e = strings.TrimSpace(e); e != "" {
				lines = append(lines, e)
			}
		}
	}
	message := strings.TrimSpace(strings.Join(lines, "\n"))
	if message == "" {
		if fb.Success {
			message = GenericSuccessMessage
		} else {
			message = GenericFailureMessage
		}
	}

	n := Notice{
		Type:        NoticeSuccess,
		Message:     message,
		DurationMS:  SuccessNoticeDurationMS,
		Dismissible: true,
	}
	if !fb.Success {
		n.Type = NoticeDanger
		n.DurationMS = PersistentNotice
	}
	if len(overrides) > 0 {
		applyOverrides(&n, overrides[0])
	}
	return normalizeNotice(n)
}

func applyOverrides(n *Notice, ovr NoticeOverrides) {
	if ovr.Type != "" {
		n.Type = ovr.Type
	}
	if ovr.Title != "" {
		n.Title = ovr.Title
	}
	if msg := strings.TrimSpace(ovr.Message); msg != "" {
		n.Message = msg
	}
	if ovr.DurationMS != nil {
		n.DurationMS = *ovr.DurationMS
	}
	if ovr.Dismissible != nil {
		n.Dismissible = *ovr.Dismissible
	}
}

func normalizeNotice(n Notice) *Notice {
	n.Message = strings.TrimSpace(n.Message)
	if n.Message == "" {
		return nil
	}
	switch n.Type {
	case NoticeInfo, NoticeSuccess, NoticeWarning, NoticeDanger:
	default:
		n.Type = NoticeInfo
	}
	if n.DurationMS < 0 {
		n.DurationMS = PersistentNotice
	}
	return &n
}
