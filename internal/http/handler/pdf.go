package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"doctools/internal/service"
)

const (
	formFieldFile     = "pdf_file"
	formFieldPassword = "password"
	downloadPath      = "/api/download/"
)

type removePasswordResponse struct {
	Success     bool   `json:"success"`
	FileID      string `json:"file_id"`
	Message     string `json:"message"`
	DownloadURL string `json:"download_url"`
}

type passwordError struct {
	err     error
	status  int
	code    string
	message string
}

// passwordErrors maps service errors to responses, checked in order.
var passwordErrors = []passwordError{
	{service.ErrNoFileUploaded, fiber.StatusBadRequest, "NO_FILE_UPLOADED", ""},
	{service.ErrNoFileSelected, fiber.StatusBadRequest, "NO_FILE_SELECTED", ""},
	{service.ErrPasswordRequired, fiber.StatusBadRequest, "PASSWORD_REQUIRED", ""},
	{service.ErrNotPDF, fiber.StatusBadRequest, "INVALID_FILE_TYPE", ""},
	{service.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", ""},
	{service.ErrIncorrectPassword, fiber.StatusBadRequest, "INCORRECT_PASSWORD", ""},
	{service.ErrProcessingFailed, fiber.StatusUnprocessableEntity, "PROCESSING_FAILED",
		"failed to process PDF: the file may be corrupted or use an unsupported encryption"},
	{service.ErrFileRejected, fiber.StatusUnprocessableEntity, "FILE_REJECTED", "file rejected by malware scan"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", ""},
}

// writePasswordError renders known service errors. Anything else goes to the global
// error handler as an internal error.
func writePasswordError(c *fiber.Ctx, err error) error {
	for _, pe := range passwordErrors {
		if errors.Is(err, pe.err) {
			msg := pe.message
			if msg == "" {
				msg = pe.err.Error()
			}
			return writeError(c, pe.status, pe.code, msg)
		}
	}
	return err
}

// RemovePassword handles POST /api/remove-password (multipart: pdf_file, password).
//
// @Summary Remove the password from a PDF
// @Tags pdf
// @Accept mpfd
// @Produce json
// @Param pdf_file formData file true "Encrypted PDF"
// @Param password formData string true "Document password"
// @Success 200 {object} removePasswordResponse
// @Failure 400 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /api/remove-password [post]
func RemovePassword(svc service.PasswordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile(formFieldFile)
		if err != nil {
			return writePasswordError(c, service.ErrNoFileUploaded)
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		content, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot read uploaded file")
		}

		out, err := svc.RemovePassword(c.UserContext(), service.UnlockInput{
			Filename: fh.Filename,
			Password: c.FormValue(formFieldPassword),
			Content:  content,
		})
		if err != nil {
			return writePasswordError(c, err)
		}

		return c.JSON(removePasswordResponse{
			Success:     true,
			FileID:      out.ID,
			Message:     "Password removed successfully",
			DownloadURL: downloadPath + out.ID,
		})
	}
}

// DownloadFile handles GET /api/download/:file_id. The entry is not consumed; it stays
// downloadable until the reaper evicts it.
//
// @Summary Download an unlocked PDF
// @Tags pdf
// @Produce application/pdf
// @Param file_id path string true "File id"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Router /api/download/{file_id} [get]
func DownloadFile(svc service.PasswordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := svc.Download(c.UserContext(), c.Params("file_id"))
		if err != nil {
			return writePasswordError(c, err)
		}

		c.Attachment(f.DownloadName())
		c.Set(fiber.HeaderContentType, "application/pdf")
		return c.Send(f.Content)
	}
}
