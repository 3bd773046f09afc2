package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UploadHandler stores uploaded assets on local disk and returns the public
// path they are served from.
type UploadHandler struct {
	Dir string
}

func (h *UploadHandler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	defer src.Close()

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	name := fmt.Sprintf("%s-%s", uuid.NewString()[:8], filepath.Base(file.Filename))
	dst, err := os.Create(filepath.Join(h.Dir, name))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusCreated, echo.Map{"path": "/uploads/" + name})
}
