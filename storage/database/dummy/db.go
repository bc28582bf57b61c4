package dummydb

import (
	"sync"

	"github.com/telepoint/backoffice/core/catalog"
	"github.com/telepoint/backoffice/core/customer"
	"github.com/telepoint/backoffice/core/notification"
	"github.com/telepoint/backoffice/core/offer"
	"github.com/telepoint/backoffice/core/operator"
	"github.com/telepoint/backoffice/core/sale"
	"github.com/telepoint/backoffice/core/sso"
	"github.com/telepoint/backoffice/core/ticket"
)

type (
	// DB is an in-memory stand-in for the real database; used in tests.
	DB struct {
		operator     *operatorTable
		customer     *customerTable
		product      *productTable
		simCard      *simCardTable
		offer        *offerTable
		sale         *saleTable
		ticket       *ticketTable
		notification *notificationTable
		authCode     *authCodeTable
	}

	operatorTable struct {
		sync.RWMutex
		table map[int]*operator.Operator
		seq   int
	}

	customerTable struct {
		sync.RWMutex
		table map[int]*customer.Customer
		seq   int
	}

	productTable struct {
		sync.RWMutex
		table map[int]*catalog.Product
		seq   int
	}

	simCardTable struct {
		sync.RWMutex
		table map[int]*catalog.SIMCard
		seq   int
	}

	offerTable struct {
		sync.RWMutex
		table map[int]*offer.Offer
		seq   int
	}

	saleTable struct {
		sync.RWMutex
		table   map[int]*sale.Sale
		seq     int
		lineSeq int
	}

	ticketTable struct {
		sync.RWMutex
		table   map[int]*ticket.Ticket
		seq     int
		noteSeq int
	}

	notificationTable struct {
		sync.RWMutex
		table      map[int]*notification.Notification
		watermarks map[int]int // operatorID -> last read notification ID
		seq        int
	}

	authCodeTable struct {
		sync.RWMutex
		table map[string]*sso.AuthCode
	}
)

func Open() (*DB, error) {
	db := &DB{
		operator:     &operatorTable{table: make(map[int]*operator.Operator)},
		customer:     &customerTable{table: make(map[int]*customer.Customer)},
		product:      &productTable{table: make(map[int]*catalog.Product)},
		simCard:      &simCardTable{table: make(map[int]*catalog.SIMCard)},
		offer:        &offerTable{table: make(map[int]*offer.Offer)},
		sale:         &saleTable{table: make(map[int]*sale.Sale)},
		ticket:       &ticketTable{table: make(map[int]*ticket.Ticket)},
		notification: &notificationTable{table: make(map[int]*notification.Notification), watermarks: make(map[int]int)},
		authCode:     &authCodeTable{table: make(map[string]*sso.AuthCode)},
	}
	return db, nil
}
