package echoweb

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/catalog"
	"github.com/telepoint/backoffice/core/sale"
)

func (s *server) saleCreatePage(ctx echo.Context) error {
	active := true
	products, _, err := s.opts.CatalogSvc.FilterProducts(catalog.ProductFilter{
		Active:     &active,
		Pagination: core.NewPagination(1, core.MaxPerPage),
	})
	if err != nil {
		return err
	}
	sims, _, err := s.opts.CatalogSvc.FilterSIMs(catalog.SIMFilter{
		Status:     catalog.SIMAvailable,
		Pagination: core.NewPagination(1, core.MaxPerPage),
	})
	if err != nil {
		return err
	}
	offers, err := s.opts.OfferSvc.ActiveOn(time.Now().UTC())
	if err != nil {
		return err
	}

	return s.render(ctx, "sale_new", "Nuova vendita", echo.Map{
		"Products":       products,
		"SIMCards":       sims,
		"Offers":         offers,
		"PaymentMethods": sale.PaymentMethods,
	})
}

// saleCreateAction reads the cart rows from the checkout form (checked
// product_id/sim_card_id boxes, quantities keyed per product) and checks the
// sale out.
func (s *server) saleCreateAction(ctx echo.Context) error {
	op, err := contextOperator(ctx)
	if err != nil {
		return err
	}

	ns := sale.NewSale{
		CustomerID:    optionalIntForm(ctx, "customer_id"),
		OfferID:       optionalIntForm(ctx, "offer_id"),
		PaymentMethod: ctx.FormValue("payment_method"),
	}

	for _, raw := range formValues(ctx, "product_id") {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			continue
		}
		qty := 1
		if q, err := strconv.Atoi(ctx.FormValue("product_qty_" + raw)); err == nil && q > 0 {
			qty = q
		}
		pid := id
		ns.Lines = append(ns.Lines, sale.NewSaleLine{ProductID: &pid, Qty: qty})
	}
	for _, raw := range formValues(ctx, "sim_card_id") {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			continue
		}
		sid := id
		ns.Lines = append(ns.Lines, sale.NewSaleLine{SIMCardID: &sid, Qty: 1})
	}
	if len(ns.Lines) == 0 {
		return s.redirectWithFeedback(ctx, "/sales/new",
			core.FailFeedback("Aggiungere almeno un articolo alla vendita."))
	}

	sl, err := s.opts.SaleSvc.Checkout(op.ID, ns)
	if err != nil {
		switch err {
		case sale.ErrEmptySale:
			return s.redirectWithFeedback(ctx, "/sales/new",
				core.FailFeedback("Aggiungere almeno un articolo alla vendita."))
		case catalog.ErrProductNotFound, catalog.ErrSIMNotFound:
			return s.redirectWithFeedback(ctx, "/sales/new",
				core.FailFeedback("Articolo non più disponibile."))
		}
		return s.redirectWithFeedback(ctx, "/sales/new", core.FeedbackFromError(err))
	}

	return s.redirectWithFeedback(ctx, "/receipts/"+strconv.Itoa(sl.ID),
		core.OKFeedback("Vendita registrata. Scontrino "+sl.Number+"."))
}

func (s *server) salesPage(ctx echo.Context) error {
	filter := sale.QueryFilter{Pagination: bindPagination(ctx)}
	if id := optionalIntForm(ctx, "customer_id"); id != nil {
		filter.CustomerID = *id
	}
	if v, err := strconv.Atoi(ctx.QueryParam("operator_id")); err == nil && v > 0 {
		filter.OperatorID = v
	}

	rows, total, err := s.opts.SaleSvc.Filter(filter)
	if err != nil {
		return err
	}
	filter.Pagination.Total = total

	if isRefresh(ctx) {
		return respondRefresh(ctx, rows, filter.Pagination)
	}
	return s.render(ctx, "sales", "Vendite", echo.Map{
		"Sales":      rows,
		"Pagination": filter.Pagination,
	})
}

// receiptPage renders the 80mm printable receipt, outside the app layout.
func (s *server) receiptPage(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	sl, err := s.opts.SaleSvc.GetByID(id)
	if err != nil {
		if err == sale.ErrNotFound {
			return errHTTPNotFound
		}
		return err
	}
	return s.renderBare(ctx, "receipt", echo.Map{
		"Title":   "Scontrino " + sl.Number,
		"Sale":    sl,
		"AppName": core.Conf.AppName,
	})
}
