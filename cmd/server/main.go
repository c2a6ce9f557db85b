package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/robfig/cron"

	config "github.com/maheshrc27/contentflow/configs"
	"github.com/maheshrc27/contentflow/internal/airtable"
	"github.com/maheshrc27/contentflow/internal/api/handlers"
	"github.com/maheshrc27/contentflow/internal/api/middleware"
	"github.com/maheshrc27/contentflow/internal/coordinator"
	job "github.com/maheshrc27/contentflow/internal/jobs"
	"github.com/maheshrc27/contentflow/internal/queue"
	"github.com/maheshrc27/contentflow/internal/repository"
	"github.com/maheshrc27/contentflow/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Invalid timezone %q: %v", cfg.Timezone, err)
	}

	store := airtable.NewClient(cfg.Airtable.APIKey, cfg.Airtable.BaseID)
	postRepo := repository.NewPostRepository(store, cfg.Airtable)
	retryRepo := repository.NewRetryRepository(store, cfg.Airtable)

	captionService := service.NewCaptionService(*cfg)
	imageService := service.NewImageService(*cfg)
	r2Service := service.NewR2Service(*cfg)
	instagramService := service.NewInstagramService(*cfg)

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	coord := coordinator.New(
		postRepo,
		retryRepo,
		captionService,
		imageService,
		r2Service,
		instagramService,
		queue.NewClient(client),
		loc,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-API-Key",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postRepo)
	api.Get("/posts", post.ListPosts)

	retry := handlers.NewRetryHandler(retryRepo)
	api.Get("/retries", retry.ListRetries)
	api.Post("/retries/requeue", retry.RequeueRetry)

	run := handlers.NewRunHandler(coord)
	api.Post("/run", run.TriggerRun)

	// cron jobs
	contentJob := job.NewContentJob(coord)

	c := cron.New()
	c.AddFunc(cfg.ProcessSchedule, contentJob.ProcessPosts)
	c.AddFunc(cfg.RetrySchedule, contentJob.ProcessRetries)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			// The store's status fields are the only lock, so scheduled
			// publishes run one at a time.
			Concurrency: 1,
		})

		mux := asynq.NewServeMux()
		worker := queue.NewWorker(coord)
		mux.HandleFunc(queue.TaskTypePublishPost, worker.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, c)
}

func gracefulShutdown(app *fiber.App, c *cron.Cron) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	c.Stop()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	log.Println("Server shutdown complete.")
}
