package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	config "github.com/harshit961695/unipost/configs"
	"github.com/harshit961695/unipost/internal/api/handlers"
	"github.com/harshit961695/unipost/internal/api/middleware"
	"github.com/harshit961695/unipost/internal/cache"
	job "github.com/harshit961695/unipost/internal/jobs"
	"github.com/harshit961695/unipost/internal/platform"
	"github.com/harshit961695/unipost/internal/queue"
	"github.com/harshit961695/unipost/internal/repository"
	"github.com/harshit961695/unipost/internal/service"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	connectionRepo := repository.NewConnectionRepository(db)
	postLogRepo := repository.NewPostLogRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	postRepo := repository.NewPostRepository(db)
	postTargetRepo := repository.NewPostTargetRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	postMediaRepo := repository.NewPostMediaRepository(db)

	adapters := platform.NewRegistry(
		platform.NewFacebookAdapter(),
		platform.NewInstagramAdapter(),
		platform.NewYoutubeAdapter(),
		platform.NewTiktokAdapter(),
	)

	stagingService := service.NewStagingService(*cfg)
	publishService := service.NewPublishService(*cfg, connectionRepo, postLogRepo, adapters, stagingService)
	postService := service.NewPostService(db, postRepo, postTargetRepo, mediaAssetRepo, postMediaRepo, stagingService)

	resultCache := cache.New(cache.DefaultWindow)
	analyticsService := service.NewAnalyticsService(connectionRepo, postLogRepo, snapshotRepo, resultCache)
	analyticsJob := job.NewAnalyticsJob(*cfg, connectionRepo, postLogRepo, snapshotRepo, adapters)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	analytics := handlers.NewAnalyticsHandler(*cfg, analyticsService, analyticsJob)
	app.Get("/jobs/fetch-analytics", analytics.FetchAnalytics)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	publish := handlers.NewPublishHandler(publishService)
	api.Post("/publish", publish.Publish)

	post := handlers.NewPostHandler(postService, client)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/remove", post.RemovePost)

	api.Get("/analytics/latest", analytics.Latest)
	api.Get("/dashboard/stats", analytics.DashboardStats)

	account := handlers.NewAccountHandler(connectionRepo)
	api.Get("/accounts", account.ListAccounts)

	//queue
	queueW := queue.NewQueue(postRepo, postService, publishService)

	c := cron.New()
	c.AddFunc(cfg.AggregationSpec, analyticsJob.Run)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

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

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
