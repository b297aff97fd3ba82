package wire

import (
	"Rendezvous/internal/api"
	"Rendezvous/internal/api/config"
	"Rendezvous/internal/api/handler"
	"Rendezvous/internal/api/ws"
	"Rendezvous/internal/job"
	"Rendezvous/internal/pkg/cron"
	"Rendezvous/internal/pkg/kafka"
	"Rendezvous/internal/pkg/llm"
	"Rendezvous/internal/pkg/minio"
	"Rendezvous/internal/pkg/mongo"
	"Rendezvous/internal/pkg/presence"
	"Rendezvous/internal/pkg/translate"
	"Rendezvous/internal/repository"
	"Rendezvous/internal/service"
	log "log/slog"

	"github.com/gin-gonic/gin"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	Gateway      *ws.Gateway
	Registry     *presence.Registry
	Relay        *presence.RedisDispatcher
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, mongoDB *mongodrv.Database, cfg *config.Config) (*ApplicationContainer, error) {
	// repo
	convRepo := repository.NewConversationRepo(db)
	mediaRepo := repository.NewMediaRepo(db)
	userRepo := repository.NewUserRepo(db)
	blockRepo := repository.NewUserBlockRepo(db)
	messageRepo := mongo.NewMessageRepo(mongoDB)

	// service
	userService := service.NewUserService(userRepo)
	blockService := service.NewUserBlockService(blockRepo)
	attachmentService := service.NewAttachmentService(mediaRepo, messageRepo, minio.NewBlobStore())
	contentBuilder := service.NewContentBuilder(newTranslateEngine(cfg))
	conversationService := service.NewConversationService(convRepo, messageRepo, userService, blockService, attachmentService)
	messageService := service.NewMessageService(messageRepo, convRepo, conversationService, attachmentService, contentBuilder)

	// realtime
	registry := presence.NewRegistry()
	var dispatcher presence.Dispatcher
	var relay *presence.RedisDispatcher
	if cfg.IM.Fanout == config.FanoutRedis {
		relay = presence.NewRedisDispatcher(registry)
		dispatcher = relay
		registry.SetTracker(presence.NewRedisTracker())
	} else {
		dispatcher = presence.NewLocalDispatcher(registry)
	}
	registry.SetListener(presence.StatusListener(dispatcher))
	gateway := ws.NewGateway(registry, dispatcher, messageService)

	handlers := &api.HandlersGroup{
		ConversationHandler: handler.NewConversationHandler(conversationService),
		MessageHandler:      handler.NewMessageHandler(messageService, conversationService),
		AttachmentHandler:   handler.NewAttachmentHandler(attachmentService, messageService),
		BlockHandler:        handler.NewBlockHandler(blockService),
		WsHandler:           handler.NewWsHandler(gateway),
	}
	router := api.SetupRouter(handlers)

	var kafkaMgr *kafka.ConsumerManager
	if len(cfg.Kafka.Brokers) > 0 {
		var err error
		kafkaMgr, err = kafka.NewConsumerManager(cfg, userService.InvalidateProfile, blockService.InvalidateCache)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("Kafka 未配置，缓存仅依赖 TTL 过期")
	}

	cronMgr := cron.NewCronManager(job.NewMediaCleanupJob(attachmentService), cfg.IM.OrphanSweepSpec)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		Gateway:      gateway,
		Registry:     registry,
		Relay:        relay,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}

// newTranslateEngine provider 为 remote 时走外部翻译服务，否则使用大模型
func newTranslateEngine(cfg *config.Config) translate.Engine {
	if cfg.Translator.Provider == config.TranslatorRemote {
		return translate.NewRemoteEngine(&cfg.Translator)
	}
	return llm.NewTranslator()
}
