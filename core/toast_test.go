package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoticeFromFeedback_success(t *testing.T) {
	n := NoticeFromFeedback(OKFeedback("Cliente registrato."))
	require.NotNil(t, n)
	assert.Equal(t, NoticeSuccess, n.Type)
	assert.Equal(t, "Cliente registrato.", n.Message)
	assert.Equal(t, SuccessNoticeDurationMS, n.DurationMS)
	assert.True(t, n.Dismissible)
}

func TestNoticeFromFeedback_failureConcatenatesDetailAndErrors(t *testing.T) {
	fb := Feedback{
		Message: "Caricamento annullato.",
		Error:   "duplicate iccid",
		Errors:  []string{"iccids: valore non valido", "  ", "carrier: obbligatorio"},
	}
	n := NoticeFromFeedback(fb)
	require.NotNil(t, n)
	assert.Equal(t, NoticeDanger, n.Type)
	assert.Equal(t,
		"Caricamento annullato.\n"+ErrorDetailPrefix+"duplicate iccid\niccids: valore non valido\ncarrier: obbligatorio",
		n.Message)
	assert.Equal(t, PersistentNotice, n.DurationMS)
}

func TestNoticeFromFeedback_successIgnoresErrorDetail(t *testing.T) {
	n := NoticeFromFeedback(Feedback{Success: true, Message: "Fatto.", Error: "leftover"})
	require.NotNil(t, n)
	assert.Equal(t, "Fatto.", n.Message)
}

func TestNoticeFromFeedback_genericFallbacks(t *testing.T) {
	n := NoticeFromFeedback(Feedback{Success: true})
	require.NotNil(t, n)
	assert.Equal(t, GenericSuccessMessage, n.Message)

	n = NoticeFromFeedback(Feedback{Errors: []string{"   "}})
	require.NotNil(t, n)
	assert.Equal(t, GenericFailureMessage, n.Message)
	assert.Equal(t, NoticeDanger, n.Type)
}

func TestNoticeFromFeedback_overrides(t *testing.T) {
	dismissible := false
	duration := 1234
	n := NoticeFromFeedback(FailFeedback("Attenzione."), NoticeOverrides{
		Type:        NoticeWarning,
		Title:       "MFA",
		Message:     "  Messaggio sostituito.  ",
		DurationMS:  &duration,
		Dismissible: &dismissible,
	})
	require.NotNil(t, n)
	assert.Equal(t, NoticeWarning, n.Type)
	assert.Equal(t, "MFA", n.Title)
	assert.Equal(t, "Messaggio sostituito.", n.Message)
	assert.Equal(t, duration, n.DurationMS)
	assert.False(t, n.Dismissible)
}

func TestNormalizeNotice(t *testing.T) {
	// blank messages drop the notice entirely
	assert.Nil(t, NormalizeNotice(Notice{Type: NoticeInfo, Message: "   "}))
	assert.Nil(t, NewNotice(NoticeSuccess, ""))

	// unknown types normalize to info
	n := NormalizeNotice(Notice{Type: "fancy", Message: "ciao"})
	require.NotNil(t, n)
	assert.Equal(t, NoticeInfo, n.Type)

	// negative durations pin the toast on screen
	n = NormalizeNotice(Notice{Type: NoticeDanger, Message: "x", DurationMS: -1})
	require.NotNil(t, n)
	assert.Equal(t, PersistentNotice, n.DurationMS)
}

func TestFeedbackFromError_validationError(t *testing.T) {
	err := NewValidationError(nil,
		FieldError{Field: "phone", Error: "già registrato"},
		FieldError{Field: "email", Error: "non valida"},
	)
	fb := FeedbackFromError(err)
	assert.False(t, fb.Success)
	assert.Equal(t, []string{"phone: già registrato", "email: non valida"}, fb.Errors)
}
