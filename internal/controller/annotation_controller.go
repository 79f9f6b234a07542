package controller

import (
	"strconv"

	"ai-study-assist-be/internal/dto"
	"ai-study-assist-be/internal/pkg/serverutils"
	"ai-study-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAnnotationController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type annotationController struct {
	annotationService service.IAnnotationService
}

func NewAnnotationController(annotationService service.IAnnotationService) IAnnotationController {
	return &annotationController{
		annotationService: annotationService,
	}
}

func (c *annotationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/annotations/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *annotationController) Create(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateAnnotationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.StudentId = studentId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.annotationService.Create(ctx.UserContext(), &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create annotation", res))
}

// List accepts course_id, concept_id and annotation_type filters.
func (c *annotationController) List(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}

	filter := dto.AnnotationFilter{
		CourseId:       ctx.Query("course_id"),
		AnnotationType: ctx.Query("annotation_type"),
	}
	if raw := ctx.Query("concept_id"); raw != "" {
		conceptId, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid concept_id")
		}
		filter.ConceptId = &conceptId
	}
	if err := serverutils.ValidateRequest(filter); err != nil {
		return err
	}

	res, err := c.annotationService.ListByStudent(ctx.UserContext(), studentId, filter)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list annotations", res))
}

func (c *annotationController) Update(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}
	id, err := paramInt64(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateAnnotationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Id = id
	req.StudentId = studentId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.annotationService.Update(ctx.UserContext(), &req)
	if err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update annotation", res))
}

func (c *annotationController) Delete(ctx *fiber.Ctx) error {
	studentId, err := serverutils.StudentID(ctx)
	if err != nil {
		return err
	}
	id, err := paramInt64(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.annotationService.Delete(ctx.UserContext(), studentId, id); err != nil {
		return httpError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete annotation", dto.DeleteAnnotationResponse{Id: id}))
}
