package controller

import (
	"errors"

	"ai-study-assist-be/internal/pkg/serverutils"
	"ai-study-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IGraphController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Refresh(ctx *fiber.Ctx) error
	Click(ctx *fiber.Ctx) error
	Hover(ctx *fiber.Ctx) error
	Leave(ctx *fiber.Ctx) error
	Prerequisites(ctx *fiber.Ctx) error
}

type graphController struct {
	graphService service.IGraphService
}

func NewGraphController(graphService service.IGraphService) IGraphController {
	return &graphController{
		graphService: graphService,
	}
}

func (c *graphController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/graph/v1/courses/:courseId")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Show)
	h.Post("refresh", c.Refresh)
	h.Post("leave", c.Leave)
	h.Post("nodes/:nodeId/click", c.Click)
	h.Post("nodes/:nodeId/hover", c.Hover)
	h.Get("nodes/:nodeId/prerequisites", c.Prerequisites)
}

// Show returns the current scene, loading the graph on first use.
func (c *graphController) Show(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}
	courseId := ctx.Params("courseId")

	res, err := c.graphService.Scene(studentId, courseId)
	if errors.Is(err, service.ErrGraphNotLoaded) {
		res, err = c.graphService.Load(ctx.UserContext(), studentId, courseId)
	}
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show concept graph", res))
}

func (c *graphController) Refresh(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	res, err := c.graphService.Load(ctx.UserContext(), studentId, ctx.Params("courseId"))
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success refresh concept graph", res))
}

func (c *graphController) Click(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}
	nodeId, err := paramInt64(ctx, "nodeId")
	if err != nil {
		return err
	}

	res, err := c.graphService.Click(studentId, ctx.Params("courseId"), nodeId)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success click concept", res))
}

func (c *graphController) Hover(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}
	nodeId, err := paramInt64(ctx, "nodeId")
	if err != nil {
		return err
	}

	res, err := c.graphService.Hover(studentId, ctx.Params("courseId"), nodeId)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success hover concept", res))
}

func (c *graphController) Leave(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	res, err := c.graphService.Leave(studentId, ctx.Params("courseId"))
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success leave concept", res))
}

func (c *graphController) Prerequisites(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}
	nodeId, err := paramInt64(ctx, "nodeId")
	if err != nil {
		return err
	}

	res, err := c.graphService.Prerequisites(studentId, ctx.Params("courseId"), nodeId)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list prerequisites", res))
}
