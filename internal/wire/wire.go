package wire

import (
	"Classfeed/internal/api"
	"Classfeed/internal/api/handler"
	"Classfeed/internal/docstore"
	"Classfeed/internal/feed"
	"Classfeed/internal/job"
	"Classfeed/internal/pkg/cron"
	"Classfeed/internal/pkg/kafka"
	"Classfeed/internal/repository"
	"Classfeed/internal/service"

	"github.com/gin-gonic/gin"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router      *gin.Engine
	Multiplexer *feed.Multiplexer
	CronManager *cron.Manager
	Producer    *kafka.Producer
}

func BuildApplication(store docstore.Store, producer *kafka.Producer) (*ApplicationContainer, error) {
	postRepo := repository.NewPostRepo(store)
	actionRepo := repository.NewActionRepo(store)

	postService := service.NewPostService(postRepo, producer)
	reactionService := service.NewReactionService(actionRepo, postRepo)
	commentService := service.NewCommentService(actionRepo, postRepo)
	viewService := service.NewViewService(actionRepo, postRepo)

	reconciler := feed.NewReconciler()
	multiplexer := feed.NewMultiplexer(store, reconciler)

	handlers := &api.HandlersGroup{
		PostHandler:   handler.NewPostHandler(postService),
		ActionHandler: handler.NewActionHandler(reactionService, commentService, viewService),
		FeedHandler:   handler.NewFeedHandler(multiplexer, reconciler),
	}

	router := api.SetupRouter(handlers)

	counterSyncJob := job.NewCounterSyncJob(postRepo, actionRepo)
	cronMgr := cron.NewCronManager(counterSyncJob)

	return &ApplicationContainer{
		Router:      router,
		Multiplexer: multiplexer,
		CronManager: cronMgr,
		Producer:    producer,
	}, nil
}
