package web

import (
	"errors"

	"github.com/dukex/operion-connections/pkg/coordinator"
	"github.com/dukex/operion-connections/pkg/services"
	"github.com/dukex/operion-connections/pkg/wizard"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType("conflict").
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for service, wizard and coordinator errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case services.IsNotFoundError(err):
		return notFound(c, err.Error())

	case errors.Is(err, wizard.ErrDraftNotFound):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("draft_not_found").
			WithDetail("draft not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case errors.Is(err, wizard.ErrConnectorRequired):
		return badRequest(c, err.Error())

	case errors.Is(err, wizard.ErrDraftNotReady),
		errors.Is(err, wizard.ErrConnectorNotLoaded),
		errors.Is(err, coordinator.ErrClosed):
		return conflict(c, err.Error())

	case services.IsUnavailableError(err):
		problem := problems.NewStatusProblem(503).
			WithInstance(c.Path()).
			WithType("service_unavailable").
			WithDetail(err.Error())

		return c.Status(fiber.StatusServiceUnavailable).JSON(problem)

	default:
		// Log unexpected errors but don't expose details
		return internalError(c, err)
	}
}
