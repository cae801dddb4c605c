package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/eliff53/kitapkiralama/app/echoServer/jwtx"
	"github.com/eliff53/kitapkiralama/model"
	booksvc "github.com/eliff53/kitapkiralama/service/book"
	rentalsvc "github.com/eliff53/kitapkiralama/service/rental"
)

type Controller struct {
	Svc     booksvc.Service
	Rentals rentalsvc.Service
	V       *validator.Validate
	Log     *slog.Logger
}

// POST /v1/books
func (h *Controller) Create(c echo.Context) error {
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	b := &model.Book{
		Title:       req.Title,
		Description: req.Description,
		PricePerDay: req.PricePerDay,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
	}
	if err := h.Svc.Create(c.Request().Context(), caller, b); err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		case booksvc.ErrCategoryMissing:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "category not found"})
		default:
			h.Log.Error("book create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, b)
}

// GET /v1/books?search=&category=
func (h *Controller) List(c echo.Context) error {
	var f booksvc.Filter
	f.TitleSearch = c.QueryParam("search")
	if cat := c.QueryParam("category"); cat != "" {
		id, err := strconv.ParseInt(cat, 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid category"})
		}
		f.CategoryID = id
	}
	rows, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/:id — book detail plus its active rentals.
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("book detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	active, err := h.Rentals.ActiveForBook(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("book detail rentals", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"book":           b,
		"active_rentals": active,
	})
}

// DELETE /v1/books/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if err := h.Svc.Delete(c.Request().Context(), caller, id); err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case booksvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case booksvc.ErrHasActiveRental:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book has an active rental"})
		default:
			h.Log.Error("book delete", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "book deleted"})
}

// PUT /v1/books/week  (admin)
func (h *Controller) SetBookOfWeek(c echo.Context) error {
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req SetBookOfWeekReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	if err := h.Svc.SetBookOfWeek(c.Request().Context(), caller, req.BookID); err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case booksvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			h.Log.Error("set book of week", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "book of the week updated"})
}

// GET /v1/admin/books/popular  (admin)
func (h *Controller) Popular(c echo.Context) error {
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.Popular(c.Request().Context(), caller)
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
		h.Log.Error("popular books", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
