package controller

import (
	"ai-study-assist-be/internal/pkg/serverutils"
	"ai-study-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IActivityController interface {
	RegisterRoutes(r fiber.Router)
	Recent(ctx *fiber.Ctx) error
}

type activityController struct {
	activityService service.IActivityService
}

func NewActivityController(activityService service.IActivityService) IActivityController {
	return &activityController{
		activityService: activityService,
	}
}

func (c *activityController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/activity/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Recent)
}

func (c *activityController) Recent(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	res := c.activityService.Recent(studentId, ctx.QueryInt("limit", 20))
	return ctx.JSON(serverutils.SuccessResponse("Success list activity", res))
}
