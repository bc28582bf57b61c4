package ticket_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/notification"
	"github.com/telepoint/backoffice/core/ticket"
	dummydb "github.com/telepoint/backoffice/storage/database/dummy"
)

type broadcastRec struct {
	titles   []string
	messages []string
}

func (r *broadcastRec) Broadcast(title, message string) error {
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return nil
}

func setup(t *testing.T) (*ticket.Service, *broadcastRec) {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	rec := &broadcastRec{}
	// mailSvc nil: purchasing mails are exercised separately
	return ticket.NewService(dummydb.NewTicketRepository(db), rec, nil), rec
}

func TestService_Open(t *testing.T) {
	svc, rec := setup(t)

	tk, err := svc.Open(1, ticket.NewTicket{
		Kind: ticket.KindSupport, Subject: "Telefono non si accende", Body: "Portato in negozio oggi.",
	})
	require.NoError(t, err)
	assert.NotZero(t, tk.ID)
	assert.Equal(t, ticket.StatusOpen, tk.Status)
	assert.Equal(t, 1, tk.OperatorID)

	require.Len(t, rec.titles, 1)
	assert.Equal(t, "Nuova richiesta di assistenza", rec.titles[0])
	assert.Equal(t, tk.Subject, rec.messages[0])
}

func TestService_Open_productRequestTitle(t *testing.T) {
	svc, rec := setup(t)

	_, err := svc.Open(1, ticket.NewTicket{
		Kind: ticket.KindProduct, Subject: "iPhone 13 128GB nero", Body: "Cliente lo vuole entro venerdì.",
	})
	require.NoError(t, err)
	require.Len(t, rec.titles, 1)
	assert.Equal(t, "Nuova richiesta prodotto", rec.titles[0])
}

func TestService_Open_validation(t *testing.T) {
	svc, rec := setup(t)

	_, err := svc.Open(1, ticket.NewTicket{Kind: "weird", Subject: "x", Body: "y"})
	require.Error(t, err)
	_, err = svc.Open(1, ticket.NewTicket{Kind: ticket.KindSupport, Subject: "   "})
	require.Error(t, err)
	assert.Empty(t, rec.titles)
}

func TestService_Transition(t *testing.T) {
	svc, _ := setup(t)

	tk, err := svc.Open(1, ticket.NewTicket{Kind: ticket.KindSupport, Subject: "s", Body: "b"})
	require.NoError(t, err)

	tk, err = svc.Transition(tk.ID, "working")
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusWorking, tk.Status)

	// working cannot go back to open
	_, err = svc.Transition(tk.ID, ticket.StatusOpen)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)

	tk, err = svc.Transition(tk.ID, "Closed") // status is case-insensitive
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusClosed, tk.Status)

	// closed is final
	_, err = svc.Transition(tk.ID, ticket.StatusWorking)
	require.ErrorAs(t, err, &vErr)
}

func TestService_Transition_openStraightToClosed(t *testing.T) {
	svc, _ := setup(t)
	tk, err := svc.Open(1, ticket.NewTicket{Kind: ticket.KindProduct, Subject: "s", Body: "b"})
	require.NoError(t, err)

	tk, err = svc.Transition(tk.ID, ticket.StatusClosed)
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusClosed, tk.Status)
}

func TestService_AddNote(t *testing.T) {
	svc, _ := setup(t)
	tk, err := svc.Open(1, ticket.NewTicket{Kind: ticket.KindSupport, Subject: "s", Body: "b"})
	require.NoError(t, err)

	n, err := svc.AddNote(tk.ID, 2, ticket.NewNote{Body: "Chiamato il cliente."})
	require.NoError(t, err)
	assert.NotZero(t, n.ID)
	assert.Equal(t, tk.ID, n.TicketID)
	assert.Equal(t, 2, n.OperatorID)

	got, err := svc.GetByID(tk.ID)
	require.NoError(t, err)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "Chiamato il cliente.", got.Notes[0].Body)

	_, err = svc.AddNote(tk.ID, 2, ticket.NewNote{Body: "  "})
	require.Error(t, err)
	_, err = svc.AddNote(999, 2, ticket.NewNote{Body: "x"})
	assert.Equal(t, ticket.ErrNotFound, err)
}

func TestService_CountsByStatus(t *testing.T) {
	svc, _ := setup(t)
	for i := 0; i < 3; i++ {
		_, err := svc.Open(1, ticket.NewTicket{Kind: ticket.KindSupport, Subject: "s", Body: "b"})
		require.NoError(t, err)
	}
	tk, err := svc.Open(1, ticket.NewTicket{Kind: ticket.KindSupport, Subject: "s", Body: "b"})
	require.NoError(t, err)
	_, err = svc.Transition(tk.ID, ticket.StatusWorking)
	require.NoError(t, err)
	_, err = svc.Open(1, ticket.NewTicket{Kind: ticket.KindProduct, Subject: "s", Body: "b"})
	require.NoError(t, err)

	counts, err := svc.CountsByStatus(ticket.KindSupport)
	require.NoError(t, err)
	assert.Equal(t, 3, counts[ticket.StatusOpen])
	assert.Equal(t, 1, counts[ticket.StatusWorking])
	assert.Zero(t, counts[ticket.StatusClosed])
}

// ticket events end up in the shared notification feed when the service
// is wired with the real notifier instead of a recorder.
func TestService_Open_feedsNotifications(t *testing.T) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	notifSvc := notification.NewService(dummydb.NewNotificationRepository(db))
	svc := ticket.NewService(dummydb.NewTicketRepository(db), notifSvc, nil)

	_, err = svc.Open(1, ticket.NewTicket{Kind: ticket.KindSupport, Subject: "s", Body: "b"})
	require.NoError(t, err)

	unread, err := notifSvc.UnreadCount(1)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)
}
