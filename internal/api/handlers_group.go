package api

import "Classfeed/internal/api/handler"

// HandlersGroup 汇总路由需要的全部 Handler
type HandlersGroup struct {
	PostHandler   *handler.PostHandler
	ActionHandler *handler.ActionHandler
	FeedHandler   *handler.FeedHandler
}
