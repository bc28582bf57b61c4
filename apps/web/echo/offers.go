package echoweb

import (
	"github.com/labstack/echo/v4"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/offer"
)

func (s *server) offersPage(ctx echo.Context) error {
	offers, err := s.opts.OfferSvc.QueryAll()
	if err != nil {
		return err
	}
	return s.render(ctx, "offers", "Offerte", echo.Map{"Offers": offers})
}

func (s *server) offersAction(ctx echo.Context) error {
	switch ctx.FormValue("action") {
	case "create":
		return s.offerCreate(ctx)
	case "toggle":
		return s.offerToggle(ctx)
	case "delete":
		return s.offerDelete(ctx)
	}
	return s.unknownAction(ctx, "/offers")
}

func (s *server) offerCreate(ctx echo.Context) error {
	var no offer.NewOffer
	if err := bind(ctx, &no); err != nil {
		return err
	}
	if err := no.Validate(); err != nil {
		return s.redirectWithFeedback(ctx, "/offers", core.FeedbackFromError(err))
	}
	if _, err := s.opts.OfferSvc.Create(no); err != nil {
		return err
	}
	return s.redirectWithFeedback(ctx, "/offers", core.OKFeedback("Offerta creata."))
}

func (s *server) offerToggle(ctx echo.Context) error {
	id, err := intFormID(ctx)
	if err != nil {
		return err
	}
	o, err := s.opts.OfferSvc.Toggle(id)
	if err != nil {
		if err == offer.ErrNotFound {
			return errHTTPNotFound
		}
		return err
	}
	msg := "Offerta disattivata."
	if o.Active {
		msg = "Offerta attivata."
	}
	return s.redirectWithFeedback(ctx, "/offers", core.OKFeedback(msg))
}

func (s *server) offerDelete(ctx echo.Context) error {
	ids := intsForm(ctx, "ids")
	if id := optionalIntForm(ctx, "id"); id != nil {
		ids = append(ids, *id)
	}
	if len(ids) == 0 {
		return s.redirectWithFeedback(ctx, "/offers", core.FailFeedback("Nessuna offerta selezionata."))
	}
	if err := s.opts.OfferSvc.Delete(ids...); err != nil {
		return err
	}
	return s.redirectWithFeedback(ctx, "/offers", core.OKFeedback("Offerta eliminata."))
}
