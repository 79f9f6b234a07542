package controller

import (
	"ai-study-assist-be/internal/dto"
	"ai-study-assist-be/internal/pkg/serverutils"
	"ai-study-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IStudyContextController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	StartSession(ctx *fiber.Ctx) error
	ResumeSession(ctx *fiber.Ctx) error
	ClearSession(ctx *fiber.Ctx) error
}

type studyContextController struct {
	contextService service.IStudyContextService
}

func NewStudyContextController(contextService service.IStudyContextService) IStudyContextController {
	return &studyContextController{
		contextService: contextService,
	}
}

func (c *studyContextController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/context/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Show)
	h.Patch("", c.Update)
	h.Post("session", c.StartSession)
	h.Put("session", c.ResumeSession)
	h.Delete("session", c.ClearSession)
}

func (c *studyContextController) Show(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	res, err := c.contextService.Get(ctx.UserContext(), studentId)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show study context", res))
}

func (c *studyContextController) Update(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateStudyContextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contextService.Update(ctx.UserContext(), studentId, &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update study context", res))
}

func (c *studyContextController) StartSession(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	var req dto.StartSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contextService.StartSession(ctx.UserContext(), studentId, &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start study session", res))
}

func (c *studyContextController) ResumeSession(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	var req dto.ResumeSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contextService.ResumeSession(ctx.UserContext(), studentId, &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success resume study session", res))
}

func (c *studyContextController) ClearSession(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	res, err := c.contextService.ClearSession(ctx.UserContext(), studentId)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear study session", res))
}
