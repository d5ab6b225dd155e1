package server

import (
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/config"
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/notify"
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/plan"
	"github.com/glasgowwebguy/UltraPlan-Application-sub000/internal/race"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	DB    *pgxpool.Pool
	Redis *redis.Client
	Hub   *notify.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		DB:    db,
		Redis: redisClient,
		Hub:   notify.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	races := race.NewService(s.DB)
	plans := plan.NewService(races, s.Redis, s.Hub, s.Cfg)

	raceGroup := s.App.Group("/races")
	race.RegisterRoutes(raceGroup, races)
	plan.RegisterRoutes(raceGroup, plans)
	notify.RegisterRoutes(s.App.Group("/notify"), s.Hub)
}
