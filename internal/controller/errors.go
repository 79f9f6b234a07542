package controller

import (
	"errors"
	"strconv"

	"ai-study-assist-be/internal/service"
	"ai-study-assist-be/pkg/assist"
	"ai-study-assist-be/pkg/graph"
	"ai-study-assist-be/pkg/learning"
	"ai-study-assist-be/pkg/studyctx"

	"github.com/gofiber/fiber/v2"
)

// httpError turns domain errors into fiber errors so the error middleware
// renders them with the right status. Unknown errors pass through as 500s.
func httpError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *learning.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return fiber.NewError(apiErr.Status, apiErr.Detail)
		}
		return fiber.NewError(fiber.StatusBadGateway, apiErr.Detail)
	}

	switch {
	case errors.Is(err, service.ErrAnnotationNotFound),
		errors.Is(err, service.ErrHostNotFound),
		errors.Is(err, service.ErrGraphNotLoaded),
		errors.Is(err, graph.ErrUnknownNode):
		return fiber.NewError(fiber.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrInvalidAnnotationType),
		errors.Is(err, service.ErrEmptySelectedText),
		errors.Is(err, service.ErrEmptyCourse),
		errors.Is(err, assist.ErrEmptyInput),
		errors.Is(err, studyctx.ErrInvalidMode),
		errors.Is(err, studyctx.ErrEmptyCourse),
		errors.Is(err, studyctx.ErrInvalidStudent),
		errors.Is(err, studyctx.ErrEmptySession):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())

	case errors.Is(err, assist.ErrHidden),
		errors.Is(err, assist.ErrBusy),
		errors.Is(err, assist.ErrInvalidTransition):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return err
}

func paramInt64(ctx *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}
