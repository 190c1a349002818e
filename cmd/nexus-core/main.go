package main

// @title           Nexus Core API
// @version         1.0
// @description     Chat-with-your-documents API. Nexus Core scrapes web pages or extracts uploaded PDFs, chunks them semantically, indexes the chunks in a vector store and answers questions against them.

// @contact.name   Nexus Labs OSS
// @contact.url    https://github.com/nexuslabs/nexus-core/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/nexuslabs/nexus-core/internal/adapters/driven/acquire"
	"github.com/nexuslabs/nexus-core/internal/adapters/driven/ai"
	"github.com/nexuslabs/nexus-core/internal/adapters/driven/auth"
	"github.com/nexuslabs/nexus-core/internal/adapters/driven/chromem"
	"github.com/nexuslabs/nexus-core/internal/adapters/driven/pinecone"
	"github.com/nexuslabs/nexus-core/internal/adapters/driven/postgres"
	postgresqueue "github.com/nexuslabs/nexus-core/internal/adapters/driven/queue/postgres"
	redisqueue "github.com/nexuslabs/nexus-core/internal/adapters/driven/queue/redis"
	redisadapter "github.com/nexuslabs/nexus-core/internal/adapters/driven/redis"
	"github.com/nexuslabs/nexus-core/internal/adapters/driving/http"
	"github.com/nexuslabs/nexus-core/internal/config"
	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driving"
	"github.com/nexuslabs/nexus-core/internal/core/services"
	"github.com/nexuslabs/nexus-core/internal/embedding"
	"github.com/nexuslabs/nexus-core/internal/normalisers"
	"github.com/nexuslabs/nexus-core/internal/retrieval"
	"github.com/nexuslabs/nexus-core/internal/runtime"
	"github.com/nexuslabs/nexus-core/internal/worker"
)

var version = "dev"

// redisPinger adapts *redis.Client to the server's Pinger interface.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func main() {
	// Load .env if present; real environment takes precedence
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mode := cfg.RunMode
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	log.Printf("nexus-core %s starting in %s mode", version, mode)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== Initialize PostgreSQL =====
	log.Println("Connecting to PostgreSQL...")
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize schema (idempotent)
	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("PostgreSQL connected and schema initialized")

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Vector index (Pinecone if configured, embedded store otherwise) =====
	var vectorIndex driven.VectorIndex
	vectorBackend := "chromem"
	if cfg.UsePinecone() {
		index := pinecone.NewIndex(pinecone.DefaultConfig(cfg.PineconeHost, cfg.PineconeAPIKey))
		if err := index.HealthCheck(ctx); err != nil {
			log.Printf("Warning: Pinecone health check failed: %v", err)
		}
		vectorIndex = index
		vectorBackend = "pinecone"
		log.Println("Using Pinecone vector index")
	} else if cfg.ChromemPath != "" {
		index, err := chromem.NewPersistentIndex(cfg.ChromemPath)
		if err != nil {
			log.Fatalf("Failed to open vector store at %s: %v", cfg.ChromemPath, err)
		}
		vectorIndex = index
		log.Printf("Using embedded vector store at %s", cfg.ChromemPath)
	} else {
		vectorIndex = chromem.NewIndex()
		log.Println("Using in-memory vector store")
	}

	// ===== Driven adapters (infrastructure) =====
	authAdapter := auth.NewAdapter(cfg.JWTSecret)
	aiFactory := ai.NewFactory()

	// ===== Secret encryption for stored API keys =====
	var encryptor *postgres.SecretEncryptor
	if key, err := cfg.EncryptionKeyBytes(); err != nil {
		log.Fatalf("Invalid encryption key: %v", err)
	} else if key != nil {
		encryptor, err = postgres.NewSecretEncryptor(key)
		if err != nil {
			log.Fatalf("Failed to create secret encryptor: %v", err)
		}
		log.Println("API key encryption enabled")
	} else {
		log.Println("Warning: ENCRYPTION_KEY not set, API keys stored in plaintext")
	}

	// ===== PostgreSQL stores =====
	userStore := postgres.NewUserStore(db)
	projectStore := postgres.NewProjectStore(db)
	chatStore := postgres.NewChatStore(db)
	settingsStore := postgres.NewSettingsStore(db, encryptor)

	// ===== Session store (Redis if available, otherwise PostgreSQL) =====
	var sessionStore driven.SessionStore
	sessionBackend := "postgres"
	if redisClient != nil {
		sessionStore = redisadapter.NewSessionStore(redisClient)
		sessionBackend = "redis"
		log.Println("Using Redis session store")
	} else {
		sessionStore = postgres.NewSessionStore(db)
		log.Println("Using PostgreSQL session store")
	}

	// ===== Task queue (Redis if available, otherwise PostgreSQL) =====
	var taskQueue driven.TaskQueue
	if redisClient != nil {
		taskQueue, err = redisqueue.NewQueue(redisClient, fmt.Sprintf("worker-%d", os.Getpid()))
		if err != nil {
			log.Fatalf("Failed to create task queue: %v", err)
		}
		log.Println("Using Redis task queue")
	} else {
		taskQueue = postgresqueue.NewQueue(db.DB)
		log.Println("Using PostgreSQL task queue")
	}

	// ===== Distributed lock (Redis if available, otherwise advisory locks) =====
	var distributedLock driven.DistributedLock
	if redisClient != nil {
		distributedLock = redisadapter.NewLock(redisClient)
		log.Println("Using Redis distributed lock")
	} else {
		distributedLock = postgres.NewAdvisoryLock(db)
		log.Println("Using PostgreSQL advisory lock")
	}

	// ===== Scrape cache (Redis only; web acquirer fetches uncached without it) =====
	var scrapeCache driven.ScrapeCache
	if redisClient != nil {
		scrapeCache = redisadapter.NewScrapeCache(redisClient)
	}

	// ===== Content acquisition =====
	webConfig := acquire.DefaultWebConfig()
	webConfig.CacheTTL = cfg.ScrapeCacheTTL
	acquirerFactory := acquire.NewFactory(
		acquire.NewWebAcquirer(webConfig, scrapeCache),
		acquire.NewPDFAcquirer(),
	)
	textExtractor := acquire.NewPDFTextExtractor()
	normaliserRegistry := normalisers.DefaultRegistry()

	// ===== Runtime AI services (hot-reloadable) =====
	runtimeConfig := domain.NewRuntimeConfig(sessionBackend, vectorBackend)
	runtimeServices := runtime.NewServices(
		runtimeConfig,
		vectorIndex,
		embedding.DefaultConfig(),
		domain.DefaultChunkingOptions(),
		retrieval.DefaultConfig(),
		slog.Default(),
	)
	defer runtimeServices.Close()

	// ===== Core services =====
	authService := services.NewAuthService(userStore, sessionStore, authAdapter)
	projectService := services.NewProjectService(projectStore, chatStore, vectorIndex, taskQueue, textExtractor, slog.Default())
	chatService := services.NewChatService(projectStore, chatStore, runtimeServices, slog.Default())
	settingsService := services.NewSettingsService(settingsStore, aiFactory, runtimeServices, slog.Default())
	ingestService := services.NewIngestService(projectStore, acquirerFactory, normaliserRegistry, runtimeServices, vectorIndex, distributedLock, slog.Default())

	// Bring stored AI settings live before serving traffic
	bootstrapAIServices(ctx, settingsStore, aiFactory, runtimeServices)

	log.Printf("Runtime config: session_backend=%s, vector_backend=%s, embedding=%t, generative=%t",
		runtimeConfig.SessionBackend,
		runtimeConfig.VectorBackend,
		runtimeConfig.EmbeddingAvailable(),
		runtimeConfig.GenerativeAvailable())

	var redisHealth http.Pinger
	if redisClient != nil {
		redisHealth = redisPinger{client: redisClient}
	}

	switch mode {
	case "api":
		runAPI(cfg, authService, projectService, chatService, settingsService, taskQueue, db, redisHealth)

	case "worker":
		runWorkerMode(ctx, cfg, taskQueue, ingestService)

	case "all":
		go runWorkerMode(ctx, cfg, taskQueue, ingestService)
		runAPI(cfg, authService, projectService, chatService, settingsService, taskQueue, db, redisHealth)

	default:
		log.Fatalf("Unknown mode: %s (use: api, worker, or all)", mode)
	}
}

// bootstrapAIServices loads persisted AI settings and brings the configured
// services online. Failures are logged, not fatal; settings can be fixed via
// the API at runtime.
func bootstrapAIServices(
	ctx context.Context,
	settingsStore driven.SettingsStore,
	aiFactory driven.AIServiceFactory,
	runtimeServices *runtime.Services,
) {
	settings, err := settingsStore.GetAISettings(ctx)
	if err != nil {
		log.Println("No stored AI settings, configure via PUT /api/v1/settings/ai")
		return
	}

	if settings.Embedding.IsConfigured() {
		svc, err := aiFactory.CreateEmbeddingService(&settings.Embedding)
		if err == nil {
			err = runtimeServices.ValidateAndSetEmbedding(ctx, svc)
		}
		if err != nil {
			log.Printf("Warning: embedding service unavailable: %v", err)
		} else {
			log.Printf("Embedding service ready (%s/%s)", settings.Embedding.Provider, settings.Embedding.Model)
		}
	}

	if settings.Generative.IsConfigured() {
		svc, err := aiFactory.CreateGenerativeService(&settings.Generative)
		if err == nil {
			err = runtimeServices.ValidateAndSetGenerative(ctx, svc)
		}
		if err != nil {
			log.Printf("Warning: generative service unavailable: %v", err)
		} else {
			log.Printf("Generative service ready (%s/%s)", settings.Generative.Provider, settings.Generative.Model)
		}
	}
}

func runAPI(
	cfg *config.Config,
	authService driving.AuthService,
	projectService driving.ProjectService,
	chatService driving.ChatService,
	settingsService driving.SettingsService,
	taskQueue driven.TaskQueue,
	db http.Pinger,
	redisClient http.Pinger,
) {
	serverCfg := http.Config{
		Host:    cfg.Host,
		Port:    cfg.Port,
		Version: version,
	}

	server := http.NewServer(
		serverCfg,
		authService,
		projectService,
		chatService,
		settingsService,
		taskQueue,
		db,
		redisClient,
	)

	log.Printf("API server starting on :%d", cfg.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runWorkerMode starts the ingestion worker.
func runWorkerMode(
	ctx context.Context,
	cfg *config.Config,
	taskQueue driven.TaskQueue,
	ingestService driving.Ingestor,
) {
	log.Println("Starting worker mode...")

	w := worker.NewWorker(worker.Config{
		TaskQueue:      taskQueue,
		Ingestor:       ingestService,
		Logger:         slog.Default(),
		Concurrency:    cfg.WorkerConcurrency,
		DequeueTimeout: cfg.WorkerDequeueTimeout,
	})

	if err := w.Start(ctx); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	log.Println("Worker started, processing ingest_project tasks...")

	// Wait for context cancellation
	<-ctx.Done()

	log.Println("Stopping worker...")
	w.Stop()
	log.Println("Worker stopped")
}
