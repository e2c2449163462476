package handler

import (
	"Classfeed/internal/api/dto"
	"Classfeed/internal/feed"
	"Classfeed/internal/model"
	"Classfeed/internal/pkg/response"
	"Classfeed/internal/pkg/security"
	"Classfeed/internal/service"
	"context"
	log "log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type FeedHandler struct {
	mux *feed.Multiplexer
	rec *feed.Reconciler
}

func NewFeedHandler(mux *feed.Multiplexer, rec *feed.Reconciler) *FeedHandler {
	return &FeedHandler{mux: mux, rec: rec}
}

// Connect 实时 Feed 长连接。
// 客户端上行 {"track": [...]} 声明关注全集，服务端把被关注帖子的
// 聚合变化推下去；帖子变得不可见时推 forbidden 让客户端移除。
func (s *FeedHandler) Connect(c *gin.Context) {
	// 鉴权
	token := c.Query("token")
	if token == "" {
		response.Error(c, service.UnauthorizedError)
		return
	}
	claims, err := security.ValidateToken(token)
	if err != nil {
		log.Warn("WS 鉴权失败", "err", err)
		response.Error(c, service.UnauthorizedError)
		return
	}
	user := claims.Snapshot()

	// 升级 Websocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	session := s.mux.NewSession()
	defer session.Close()

	listener := s.rec.Listen()
	defer listener.Close()

	log.Info("用户 Feed 连接已建立", "userID", user.ID)

	stopChan := make(chan struct{})

	// 读循环：接收 track 全集声明，兼监听客户端断开
	go func() {
		defer close(stopChan)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var req dto.FeedTrackReq
			if err := json.Unmarshal(data, &req); err != nil {
				log.Warn("Feed track 消息无法解析", "userID", user.ID, "err", err)
				continue
			}
			session.Track(context.Background(), req.Track)
		}
	}()

	// 写循环：只推本会话追踪的帖子，再按可见性过滤
	for {
		select {
		case update := <-listener.C:
			if !session.Tracks(update.PostID) {
				continue
			}
			out := s.render(user, update)
			if out == nil {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(out); err != nil {
				log.Error("Feed 推送失败", "userID", user.ID, "err", err)
				return
			}
		case <-stopChan:
			log.Info("用户 Feed 连接已断开", "userID", user.ID)
			return
		}
	}
}

// render 可见则给全量聚合，不可见则给 forbidden，帖子未到齐则不推
func (s *FeedHandler) render(viewer model.UserSnapshot, update feed.Update) *dto.FeedUpdateDTO {
	agg := update.Aggregate
	if agg == nil || agg.Post == nil {
		return nil
	}

	if !agg.Post.VisibleTo(viewer) {
		return &dto.FeedUpdateDTO{
			Type:   "forbidden",
			PostID: update.PostID,
		}
	}

	return &dto.FeedUpdateDTO{
		Type:           "update",
		PostID:         update.PostID,
		Post:           toPostDTO(agg.Post),
		Comments:       toCommentDTOs(agg.Comments),
		ReactionCounts: agg.ReactionCounts,
	}
}
