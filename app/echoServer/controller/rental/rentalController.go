package rental

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/eliff53/kitapkiralama/app/echoServer/jwtx"
	rs "github.com/eliff53/kitapkiralama/service/rental"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Create a rental
// @Summary      Rent a book for a date range
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateRentalReq  true  "Rental payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any "book not found"
// @Failure      409  {object}  map[string]any "dates conflict"
// @Router       /v1/rentals [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	out, err := h.Svc.Create(c.Request().Context(), caller, req.BookID, req.StartDate, req.EndDate)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case rs.ErrBadDates:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "start and end dates are required"})
		case rs.ErrEndBeforeStart:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "end date must be after start date"})
		case rs.ErrStartInPast:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "start date cannot be in the past"})
		case rs.ErrBookRented:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book is currently rented"})
		case rs.ErrDatesTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book is already rented for these dates"})
		default:
			h.Log.Error("rental create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "rental created",
		"rental": echo.Map{
			"id":          out.ID,
			"book_title":  out.BookTitle,
			"renter_name": out.RenterName,
			"start_date":  out.StartDate,
			"end_date":    out.EndDate,
			"total_price": out.TotalPrice,
		},
	})
}

// DELETE /v1/rentals/:id
func (h *Controller) Cancel(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.Cancel(c.Request().Context(), caller, id); err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "rental not found"})
		case rs.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("rental cancel", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "rental cancelled"})
}

// GET /v1/rentals/my
func (h *Controller) MyRentals(c echo.Context) error {
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.MyRentals(c.Request().Context(), caller)
	if err != nil {
		h.Log.Error("rental list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
