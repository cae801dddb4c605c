package upload

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	uploadsvc "github.com/eliff53/kitapkiralama/service/upload"
)

type Controller struct {
	Svc uploadsvc.Service
	Log *slog.Logger
}

// POST /v1/uploads — multipart image, field name "file".
func (h *Controller) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "file required"})
	}
	src, err := fh.Open()
	if err != nil {
		h.Log.Error("upload open", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	defer src.Close()

	url, err := h.Svc.SaveImage(fh.Filename, fh.Header.Get("Content-Type"), fh.Size, src)
	if err != nil {
		switch uploadsvc.Code(err) {
		case uploadsvc.ErrNoFile:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "file required"})
		case uploadsvc.ErrNotImage:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "only image files are accepted"})
		case uploadsvc.ErrTooLarge:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "file must be smaller than 5MB"})
		default:
			h.Log.Error("upload save", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "upload failed"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"image_url": url})
}
