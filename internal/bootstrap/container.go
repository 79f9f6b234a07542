package bootstrap

import (
	"context"
	"errors"
	"log"

	"ai-study-assist-be/internal/config"
	"ai-study-assist-be/internal/controller"
	"ai-study-assist-be/internal/handler"
	"ai-study-assist-be/internal/pkg/logger"
	"ai-study-assist-be/internal/pkg/serverutils"
	"ai-study-assist-be/internal/repository/memory"
	"ai-study-assist-be/internal/repository/unitofwork"
	"ai-study-assist-be/internal/service"
	"ai-study-assist-be/internal/websocket"
	"ai-study-assist-be/pkg/audit"
	"ai-study-assist-be/pkg/learning"
	pktNats "ai-study-assist-be/pkg/nats"
	"ai-study-assist-be/pkg/studyctx"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AnnotationController   controller.IAnnotationController
	AssistController       controller.IAssistController
	GraphController        controller.IGraphController
	StudyContextController controller.IStudyContextController
	ActivityController     controller.IActivityController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	ActivityService service.IActivityService

	// WebSockets
	RealtimeHandler *handler.RealtimeHandler
	WebSocketHub    *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires every component. db may be nil when annotations are
// kept by the learning API instead of postgres.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	serverutils.ConfigureJWT(cfg.Auth.JWTSecret)
	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, func(subject string, err error) {
		sysLogger.Warn("NATS", "Failed to handle event", map[string]interface{}{
			"subject": subject,
			"error":   err.Error(),
		})
	})
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.closers = append(c.closers, natsSub.Close)
	}

	// Redis. Without it the hub runs single instance and study contexts
	// live in process memory.
	rdb := connectRedis(cfg.App.RedisURL)
	var contextStore studyctx.Store = studyctx.NewMemoryStore()
	if rdb != nil {
		contextStore = studyctx.NewRedisStore(rdb)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.RealtimeLogPath)
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)

	// Learning API
	learningClient := learning.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)

	// 4. Services
	eventPublisher := audit.NewNatsPublisher(natsPub, sysLogger)
	annotationCache := memory.NewAnnotationCache(cfg.Annotation.CacheTTL)

	var store service.AnnotationStore
	if cfg.Annotation.Store == config.AnnotationStoreUpstream || db == nil {
		log.Printf("[INFO] Annotation store: learning API (%s)", cfg.Upstream.BaseURL)
		store = service.NewRemoteAnnotationStore(learningClient)
	} else {
		log.Printf("[INFO] Annotation store: postgres")
		store = service.NewDatabaseAnnotationStore(unitofwork.NewRepositoryFactory(db))
	}

	publisherService := service.NewPublisherService(cfg.App.ChangeTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.App.ChangeTopic,
		annotationCache,
		c.WebSocketHub,
		sysLogger,
	)

	annotationService := service.NewAnnotationService(store, annotationCache, publisherService, eventPublisher, sysLogger)
	contextService := service.NewStudyContextService(contextStore, c.WebSocketHub, sysLogger)

	hostRegistry := memory.NewHostRegistry(cfg.Assist.HostIdleTTL)
	c.closers = append(c.closers, hostRegistry.Close)
	assistService := service.NewAssistService(
		hostRegistry,
		learning.Explainer{Client: learningClient},
		service.AnnotationNoteSaver{Service: annotationService},
		contextService,
		c.WebSocketHub,
		eventPublisher,
		cfg.Assist.RequestTimeout,
		sysLogger,
	)

	graphService := service.NewGraphService(learningClient, cfg.Assist.GraphIdleTTL, c.WebSocketHub, eventPublisher, sysLogger)

	var subscriber service.EventSubscriber
	if natsSub != nil {
		subscriber = natsSub
	}
	c.ActivityService = service.NewActivityService(subscriber, cfg.Assist.ActivityTTL, c.WebSocketHub, sysLogger)

	// 5. Handlers & Controllers
	var realtimePublisher handler.EventPublisher
	if natsPub != nil {
		realtimePublisher = natsPub
	}
	c.RealtimeHandler = handler.NewRealtimeHandler(realtimePublisher, c.WebSocketHub, wsLogger)

	c.AnnotationController = controller.NewAnnotationController(annotationService)
	c.AssistController = controller.NewAssistController(assistService)
	c.GraphController = controller.NewGraphController(graphService)
	c.StudyContextController = controller.NewStudyContextController(contextService)
	c.ActivityController = controller.NewActivityController(c.ActivityService)

	return c
}

func connectRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (running single instance)", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// Start runs the background workers until ctx is done.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}

	if err := c.ActivityService.Start(ctx); err != nil {
		if !errors.Is(err, service.ErrNoEventBus) {
			return err
		}
		log.Printf("[WARN] Activity feed disabled: %v", err)
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
