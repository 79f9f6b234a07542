package controller

import (
	"context"

	"ai-study-assist-be/internal/dto"
	"ai-study-assist-be/internal/pkg/serverutils"
	"ai-study-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssistController interface {
	RegisterRoutes(r fiber.Router)
	CreateHost(ctx *fiber.Ctx) error
	ShowHost(ctx *fiber.Ctx) error
	UpdateScope(ctx *fiber.Ctx) error
	CloseHost(ctx *fiber.Ctx) error
	Release(ctx *fiber.Ctx) error
	Explain(ctx *fiber.Ctx) error
	Examples(ctx *fiber.Ctx) error
	AskMore(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
	SaveNote(ctx *fiber.Ctx) error
	Dismiss(ctx *fiber.Ctx) error
	ClickOutside(ctx *fiber.Ctx) error
}

type assistController struct {
	assistService service.IAssistService
}

func NewAssistController(assistService service.IAssistService) IAssistController {
	return &assistController{
		assistService: assistService,
	}
}

func (c *assistController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assist/v1/hosts")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.CreateHost)
	h.Get(":id", c.ShowHost)
	h.Put(":id/scope", c.UpdateScope)
	h.Delete(":id", c.CloseHost)

	h.Post(":id/release", c.Release)
	h.Post(":id/explain", c.Explain)
	h.Post(":id/examples", c.Examples)
	h.Post(":id/ask-more", c.AskMore)
	h.Post(":id/chat", c.SendChat)
	h.Post(":id/save-note", c.SaveNote)
	h.Post(":id/dismiss", c.Dismiss)
	h.Post(":id/click-outside", c.ClickOutside)
}

func (c *assistController) CreateHost(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateHostRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	res, err := c.assistService.CreateHost(ctx.UserContext(), studentId, &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success open assist host", res))
}

func (c *assistController) ShowHost(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	res, err := c.assistService.GetHost(studentId, ctx.Params("id"))
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show assist host", res))
}

func (c *assistController) UpdateScope(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateHostScopeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistService.UpdateScope(studentId, ctx.Params("id"), &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update assist scope", res))
}

func (c *assistController) CloseHost(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	if err := c.assistService.CloseHost(studentId, ctx.Params("id")); err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success close assist host", nil))
}

func (c *assistController) Release(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	var req dto.SelectionReleaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistService.Release(studentId, ctx.Params("id"), &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success release selection", res))
}

type hostAction func(ctx context.Context, studentId int64, hostId string) (*dto.HostResponse, error)

func (c *assistController) run(ctx *fiber.Ctx, message string, action hostAction) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	res, err := action(ctx.UserContext(), studentId, ctx.Params("id"))
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse(message, res))
}

func (c *assistController) Explain(ctx *fiber.Ctx) error {
	return c.run(ctx, "Success explain selection", c.assistService.Explain)
}

func (c *assistController) Examples(ctx *fiber.Ctx) error {
	return c.run(ctx, "Success give examples", c.assistService.Examples)
}

func (c *assistController) AskMore(ctx *fiber.Ctx) error {
	return c.run(ctx, "Success open chat", c.assistService.AskMore)
}

func (c *assistController) SaveNote(ctx *fiber.Ctx) error {
	return c.run(ctx, "Success save note", c.assistService.SaveNote)
}

func (c *assistController) Dismiss(ctx *fiber.Ctx) error {
	return c.run(ctx, "Success dismiss", c.assistService.Dismiss)
}

func (c *assistController) SendChat(ctx *fiber.Ctx) error {
	var req dto.AssistChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	return c.run(ctx, "Success send chat", func(uctx context.Context, studentId int64, hostId string) (*dto.HostResponse, error) {
		return c.assistService.SendChat(uctx, studentId, hostId, &req)
	})
}

func (c *assistController) ClickOutside(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	res, err := c.assistService.ClickOutside(ctx.UserContext(), studentId, ctx.Params("id"))
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success click outside", res))
}
