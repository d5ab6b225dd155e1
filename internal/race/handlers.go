package race

import (
	"bytes"
	"errors"

	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/ingest"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	// Segment-by-id routes go first so "/segments/:id" never collides
	// with "/:id".
	r.Put("/segments/:id", func(c *fiber.Ctx) error {
		var req Segment
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		seg, err := svc.UpdateSegment(c.Context(), c.Params("id"), req)
		if errors.Is(err, ErrSegmentOrder) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(seg)
	})

	r.Delete("/segments/:id", func(c *fiber.Ctx) error {
		if err := svc.DeleteSegment(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/", func(c *fiber.Ctx) error {
		var req Race
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Name == "" || req.DistanceMiles <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "name and positive distance_miles required")
		}
		created, err := svc.CreateRace(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		race, err := svc.GetRace(c.Context(), c.Params("id"))
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "race not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(race)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := svc.DeleteRace(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/segments", func(c *fiber.Ctx) error {
		var req Segment
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.RaceID = c.Params("id")
		if req.CheckpointName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "checkpoint_name required")
		}
		seg, err := svc.CreateSegment(c.Context(), req)
		if errors.Is(err, ErrSegmentOrder) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(seg)
	})

	r.Get("/:id/segments", func(c *fiber.Ctx) error {
		segments, err := svc.Segments(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(segments)
	})

	r.Post("/:id/course", func(c *fiber.Ctx) error {
		points, err := ingest.ParseGPX(bytes.NewReader(c.Body()))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := svc.SaveCourse(c.Context(), c.Params("id"), points); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"points": len(points)})
	})

	r.Get("/:id/course", func(c *fiber.Ctx) error {
		points, err := svc.Course(c.Context(), c.Params("id"))
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "no course uploaded")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(points)
	})

	r.Post("/:id/activity", func(c *fiber.Ctx) error {
		role := ActivityRole(c.Query("role", string(RoleHistory)))
		if role != RoleHistory && role != RoleResult {
			return fiber.NewError(fiber.StatusBadRequest, "role must be history or result")
		}
		records, err := ingest.ParseFIT(bytes.NewReader(c.Body()))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := svc.SaveActivity(c.Context(), c.Params("id"), role, records); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"records": len(records)})
	})
}
