package review

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/eliff53/kitapkiralama/app/echoServer/jwtx"
	reviewsvc "github.com/eliff53/kitapkiralama/service/review"
)

type UpsertReviewReq struct {
	BookID  int64   `json:"book_id" validate:"required,gt=0"`
	Rating  int     `json:"rating" validate:"required,gte=1,lte=5"`
	Comment *string `json:"comment,omitempty"`
}

type Controller struct {
	Svc reviewsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/reviews?book_id=
func (h *Controller) ForBook(c echo.Context) error {
	id, err := strconv.ParseInt(c.QueryParam("book_id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "book_id required"})
	}
	sum, err := h.Svc.ForBook(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("review list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, sum)
}

// POST /v1/reviews — create or replace the caller's review.
func (h *Controller) Upsert(c echo.Context) error {
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req UpsertReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	rv, err := h.Svc.Upsert(c.Request().Context(), caller, req.BookID, req.Rating, req.Comment)
	if err != nil {
		switch reviewsvc.Code(err) {
		case reviewsvc.ErrBadRating:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "rating must be between 1 and 5"})
		case reviewsvc.ErrNotRented:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "you can review a book only after renting it"})
		default:
			h.Log.Error("review upsert", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"review": rv})
}
