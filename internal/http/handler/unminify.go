package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"doctools/internal/service"
	"doctools/internal/unminify"
)

type unminifyRequest struct {
	Code string `json:"code" form:"code"`
	Type string `json:"type" form:"type"`
}

type unminifyResponse struct {
	Success bool   `json:"success"`
	Type    string `json:"type"`
	Result  string `json:"result"`
}

// Unminify handles POST /unminify/process with a JSON body {code, type?}.
//
// @Summary Reformat minified source
// @Tags unminify
// @Accept json
// @Produce json
// @Param request body unminifyRequest true "Source and optional type (js, css, html, json, xml)"
// @Success 200 {object} unminifyResponse
// @Failure 400 {object} errorPayload
// @Router /unminify/process [post]
func Unminify(svc service.UnminifyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req unminifyRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := svc.Unminify(c.UserContext(), req.Code, req.Type)
		switch {
		case errors.Is(err, unminify.ErrNoCode):
			return writeError(c, fiber.StatusBadRequest, "NO_CODE", err.Error())
		case errors.Is(err, unminify.ErrUnsupportedFormat):
			return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_TYPE", err.Error())
		case err != nil:
			return writeError(c, fiber.StatusBadRequest, "UNMINIFY_FAILED", err.Error())
		}

		return c.JSON(unminifyResponse{
			Success: true,
			Type:    res.Format.String(),
			Result:  res.Output,
		})
	}
}
