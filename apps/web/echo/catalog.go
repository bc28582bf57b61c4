package echoweb

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/catalog"
)

func (s *server) productsPage(ctx echo.Context) error {
	filter := catalog.ProductFilter{
		Search:     ctx.QueryParam("search"),
		Category:   ctx.QueryParam("category"),
		LowStock:   ctx.QueryParam("low_stock") == "1",
		Pagination: bindPagination(ctx),
	}
	if v := ctx.QueryParam("active"); v != "" {
		active := v == "1"
		filter.Active = &active
	}

	rows, total, err := s.opts.CatalogSvc.FilterProducts(filter)
	if err != nil {
		return err
	}
	filter.Pagination.Total = total

	if isRefresh(ctx) {
		return respondRefresh(ctx, rows, filter.Pagination)
	}
	return s.render(ctx, "products", "Prodotti", echo.Map{
		"Products":   rows,
		"Categories": catalog.Categories,
		"Pagination": filter.Pagination,
		"Search":     filter.Search,
		"Category":   filter.Category,
	})
}

func (s *server) productsAction(ctx echo.Context) error {
	switch ctx.FormValue("action") {
	case "create":
		return s.productCreate(ctx)
	case "update":
		return s.productUpdate(ctx)
	case "adjust_stock":
		return s.productAdjustStock(ctx)
	case "delete":
		return s.productDelete(ctx)
	}
	return s.unknownAction(ctx, "/products")
}

func (s *server) productCreate(ctx echo.Context) error {
	var np catalog.NewProduct
	if err := bind(ctx, &np); err != nil {
		return err
	}
	if err := np.Validate(s.opts.CatalogSvc); err != nil {
		return s.redirectWithFeedback(ctx, "/products", core.FeedbackFromError(err))
	}
	if _, err := s.opts.CatalogSvc.CreateProduct(np); err != nil {
		return err
	}
	return s.redirectWithFeedback(ctx, "/products", core.OKFeedback("Prodotto aggiunto al catalogo."))
}

func (s *server) productUpdate(ctx echo.Context) error {
	id, err := intFormID(ctx)
	if err != nil {
		return err
	}
	orig, err := s.opts.CatalogSvc.GetProduct(id)
	if err != nil {
		if err == catalog.ErrProductNotFound {
			return errHTTPNotFound
		}
		return err
	}

	var up catalog.UpdateProduct
	if err := bind(ctx, &up); err != nil {
		return err
	}
	if err := up.Validate(orig, s.opts.CatalogSvc); err != nil {
		return s.redirectWithFeedback(ctx, "/products", core.FeedbackFromError(err))
	}
	if _, err := s.opts.CatalogSvc.UpdateProduct(id, up); err != nil {
		return err
	}
	return s.redirectWithFeedback(ctx, "/products", core.OKFeedback("Prodotto aggiornato."))
}

func (s *server) productAdjustStock(ctx echo.Context) error {
	id, err := intFormID(ctx)
	if err != nil {
		return err
	}
	delta, err := strconv.Atoi(ctx.FormValue("delta"))
	if err != nil || delta == 0 {
		return s.redirectWithFeedback(ctx, "/products", core.FailFeedback("Variazione di giacenza non valida."))
	}
	if _, err := s.opts.CatalogSvc.AdjustStock(id, delta); err != nil {
		switch err {
		case catalog.ErrProductNotFound:
			return errHTTPNotFound
		case catalog.ErrInsufficientStock:
			return s.redirectWithFeedback(ctx, "/products", core.Feedback{
				Message: "Giacenza insufficiente.", Error: err.Error(),
			})
		}
		return err
	}
	return s.redirectWithFeedback(ctx, "/products", core.OKFeedback("Giacenza aggiornata."))
}

func (s *server) productDelete(ctx echo.Context) error {
	ids := intsForm(ctx, "ids")
	if id := optionalIntForm(ctx, "id"); id != nil {
		ids = append(ids, *id)
	}
	if len(ids) == 0 {
		return s.redirectWithFeedback(ctx, "/products", core.FailFeedback("Nessun prodotto selezionato."))
	}
	if err := s.opts.CatalogSvc.DeleteProducts(ids...); err != nil {
		return err
	}
	return s.redirectWithFeedback(ctx, "/products", core.OKFeedback("Prodotto eliminato."))
}

func (s *server) simStockPage(ctx echo.Context) error {
	filter := catalog.SIMFilter{
		Search:     ctx.QueryParam("search"),
		Carrier:    ctx.QueryParam("carrier"),
		Status:     ctx.QueryParam("status"),
		Pagination: bindPagination(ctx),
	}
	rows, total, err := s.opts.CatalogSvc.FilterSIMs(filter)
	if err != nil {
		return err
	}
	filter.Pagination.Total = total

	if isRefresh(ctx) {
		return respondRefresh(ctx, rows, filter.Pagination)
	}

	counts, err := s.opts.CatalogSvc.SIMCountsByStatus()
	if err != nil {
		return err
	}
	return s.render(ctx, "sim_stock", "Magazzino SIM", echo.Map{
		"SIMCards":   rows,
		"Counts":     counts,
		"Pagination": filter.Pagination,
		"Search":     filter.Search,
		"Carrier":    filter.Carrier,
		"Status":     filter.Status,
	})
}

func (s *server) simStockAction(ctx echo.Context) error {
	switch ctx.FormValue("action") {
	case "load_batch":
		return s.simLoadBatch(ctx)
	case "assign":
		return s.simAssign(ctx)
	case "sell":
		return s.simSell(ctx)
	}
	return s.unknownAction(ctx, "/sim-stock")
}

// simLoadBatch registers a run of ICCIDs pasted one per line.
func (s *server) simLoadBatch(ctx echo.Context) error {
	nb := catalog.NewSIMBatch{Carrier: ctx.FormValue("carrier")}
	for _, line := range strings.Split(ctx.FormValue("iccids"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			nb.ICCIDs = append(nb.ICCIDs, line)
		}
	}
	if err := nb.Validate(); err != nil {
		return s.redirectWithFeedback(ctx, "/sim-stock", core.FeedbackFromError(err))
	}

	cards, err := s.opts.CatalogSvc.LoadSIMBatch(nb)
	if err != nil {
		if err == catalog.ErrICCIDExists {
			return s.redirectWithFeedback(ctx, "/sim-stock", core.Feedback{
				Message: "Caricamento annullato.", Error: err.Error(),
			})
		}
		return err
	}
	return s.redirectWithFeedback(ctx, "/sim-stock",
		core.OKFeedback("Caricate "+strconv.Itoa(len(cards))+" SIM."))
}

func (s *server) simAssign(ctx echo.Context) error {
	id, err := intFormID(ctx)
	if err != nil {
		return err
	}
	custID := optionalIntForm(ctx, "customer_id")
	if custID == nil {
		return s.redirectWithFeedback(ctx, "/sim-stock", core.FailFeedback("Selezionare un cliente."))
	}
	if _, err := s.opts.CatalogSvc.AssignSIM(id, *custID); err != nil {
		return s.simActionError(ctx, err)
	}
	return s.redirectWithFeedback(ctx, "/sim-stock", core.OKFeedback("SIM assegnata al cliente."))
}

func (s *server) simSell(ctx echo.Context) error {
	id, err := intFormID(ctx)
	if err != nil {
		return err
	}
	custID := optionalIntForm(ctx, "customer_id")
	if custID == nil {
		return s.redirectWithFeedback(ctx, "/sim-stock", core.FailFeedback("Selezionare un cliente."))
	}
	if _, err := s.opts.CatalogSvc.SellSIM(id, *custID); err != nil {
		return s.simActionError(ctx, err)
	}
	return s.redirectWithFeedback(ctx, "/sim-stock", core.OKFeedback("SIM venduta."))
}

func (s *server) simActionError(ctx echo.Context, err error) error {
	switch err {
	case catalog.ErrSIMNotFound:
		return errHTTPNotFound
	case catalog.ErrSIMNotAvailable:
		return s.redirectWithFeedback(ctx, "/sim-stock", core.Feedback{
			Message: "SIM non disponibile.", Error: err.Error(),
		})
	}
	return err
}
