package message

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/eliff53/kitapkiralama/app/echoServer/jwtx"
	msgsvc "github.com/eliff53/kitapkiralama/service/message"
)

type SendMessageReq struct {
	ReceiverID int64  `json:"receiver_id" validate:"required,gt=0"`
	Content    string `json:"content" validate:"required"`
}

type MarkReadReq struct {
	SenderID int64 `json:"sender_id" validate:"required,gt=0"`
}

type Controller struct {
	Svc msgsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/messages
func (h *Controller) List(c echo.Context) error {
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.ListForUser(c.Request().Context(), caller)
	if err != nil {
		h.Log.Error("message list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/messages
func (h *Controller) Send(c echo.Context) error {
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req SendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	m, err := h.Svc.Send(c.Request().Context(), caller, req.ReceiverID, req.Content)
	if err != nil {
		switch msgsvc.Code(err) {
		case msgsvc.ErrEmptyContent:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "message cannot be empty"})
		case msgsvc.ErrSelfMessage:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "cannot message yourself"})
		case msgsvc.ErrReceiverNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "receiver not found"})
		default:
			h.Log.Error("message send", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "sent", "data": m})
}

// GET /v1/messages/unread
func (h *Controller) UnreadCount(c echo.Context) error {
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	n, err := h.Svc.UnreadCount(c.Request().Context(), caller)
	if err != nil {
		h.Log.Error("unread count", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"unread_count": n})
}

// PUT /v1/messages/read
func (h *Controller) MarkRead(c echo.Context) error {
	caller, err := jwtx.CallerFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req MarkReadReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	n, err := h.Svc.MarkRead(c.Request().Context(), caller, req.SenderID)
	if err != nil {
		h.Log.Error("mark read", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"marked": n})
}
