package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"doctools/internal/service"
)

// ListActivity handles GET /api/activity?limit&offset.
//
// @Summary List recent activity
// @Tags activity
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} service.ActivityListResult
// @Failure 400 {object} errorPayload
// @Router /api/activity [get]
func ListActivity(svc service.ActivityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "20"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}
