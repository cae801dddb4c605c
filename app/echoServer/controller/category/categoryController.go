package category

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/eliff53/kitapkiralama/app/echoServer/jwtx"
	catsvc "github.com/eliff53/kitapkiralama/service/category"
)

type CreateCategoryReq struct {
	Name string `json:"name" validate:"required"`
}

type Controller struct {
	Svc catsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/categories
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("category list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/categories  (admin)
func (h *Controller) Create(c echo.Context) error {
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req CreateCategoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	id, err := h.Svc.Create(c.Request().Context(), caller, req.Name)
	if err != nil {
		switch catsvc.Code(err) {
		case catsvc.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case catsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		case catsvc.ErrNameTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "category already exists"})
		default:
			h.Log.Error("category create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}
