package echoweb

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/telepoint/backoffice/core"
)

func bind(ctx echo.Context, dst interface{}) error {
	if err := ctx.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Dati della richiesta non validi.")
	}
	return nil
}

// bindPagination clamps the page/per_page query params.
func bindPagination(ctx echo.Context) core.Pagination {
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	perPage, _ := strconv.Atoi(ctx.QueryParam("per_page"))
	return core.NewPagination(page, perPage)
}

func intParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id < 1 {
		return 0, errHTTPNotFound
	}
	return id, nil
}

// isRefresh marks an in-page table reload; it gets JSON instead of a full page.
func isRefresh(ctx echo.Context) bool {
	return ctx.QueryParam("action") == "refresh" || isAJAX(ctx)
}

// optionalIntForm reads a form field as *int; empty or junk means absent.
func optionalIntForm(ctx echo.Context, name string) *int {
	v, err := strconv.Atoi(ctx.FormValue(name))
	if err != nil || v < 1 {
		return nil
	}
	return &v
}

// intsForm reads a repeated form field ("ids") as a slice of ints, skipping junk.
func intsForm(ctx echo.Context, name string) []int {
	if err := ctx.Request().ParseForm(); err != nil {
		return nil
	}
	raw := ctx.Request().Form[name]
	ids := make([]int, 0, len(raw))
	for _, r := range raw {
		if id, err := strconv.Atoi(r); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func formValues(ctx echo.Context, name string) []string {
	if err := ctx.Request().ParseForm(); err != nil {
		return nil
	}
	return ctx.Request().Form[name]
}
