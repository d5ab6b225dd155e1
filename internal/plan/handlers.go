package plan

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/:id/plan", func(c *fiber.Ctx) error {
		opts := Options{
			Strategy:      c.Query("strategy"),
			FatigueFactor: queryFloat(c, "fatigue"),
		}
		p, err := svc.GetWithOptions(c.Context(), c.Params("id"), opts)
		if errors.Is(err, ErrUnknownStrategy) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "race not found")
		}
		if errors.Is(err, ErrMissingBodyWeight) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(p)
	})

	r.Get("/:id/fatigue-curve", func(c *fiber.Ctx) error {
		basePace := queryFloat(c, "pace")
		factor := queryFloat(c, "factor")
		curve, err := svc.FatigueCurve(c.Context(), c.Params("id"), basePace, factor)
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "race not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(curve)
	})

	r.Get("/:id/analysis", func(c *fiber.Ctx) error {
		analytics, err := svc.Analysis(c.Context(), c.Params("id"))
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "race not found")
		}
		if errors.Is(err, ErrMissingBodyWeight) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		if errors.Is(err, ErrNoResult) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(analytics)
	})
}

func queryFloat(c *fiber.Ctx, name string) float64 {
	v, err := strconv.ParseFloat(c.Query(name), 64)
	if err != nil {
		return 0
	}
	return v
}
