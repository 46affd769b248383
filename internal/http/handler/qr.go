package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/skip2/go-qrcode"

	"doctools/internal/service"
)

const qrSize = 256

// DownloadQR handles GET /api/download/:file_id/qr and renders a PNG QR code pointing at the
// download URL. baseURL overrides the request's own scheme and host when set.
//
// @Summary QR code for a download link
// @Tags pdf
// @Produce png
// @Param file_id path string true "File id"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Router /api/download/{file_id}/qr [get]
func DownloadQR(svc service.PasswordService, baseURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("file_id")
		if !svc.Exists(c.UserContext(), id) {
			return writePasswordError(c, service.ErrNotFound)
		}

		base := baseURL
		if base == "" {
			base = c.BaseURL()
		}

		png, err := qrcode.Encode(base+downloadPath+id, qrcode.Medium, qrSize)
		if err != nil {
			return err
		}

		c.Type("png")
		return c.Send(png)
	}
}
