package job

import (
	"Classfeed/internal/model"
	"Classfeed/internal/pkg/consts"
	"Classfeed/internal/pkg/logger"
	"Classfeed/internal/pkg/redis"
	"Classfeed/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const countCacheExpiration = 7 * 24 * time.Hour

// CounterSyncJob 离线对账：以行为明细为准重算脏帖子的各项计数，
// 修复写冲突造成的 viewCount 漂移，并刷新计数缓存
type CounterSyncJob struct {
	postRepo   repository.PostRepo
	actionRepo repository.ActionRepo
}

func NewCounterSyncJob(postRepo repository.PostRepo, actionRepo repository.ActionRepo) *CounterSyncJob {
	return &CounterSyncJob{
		postRepo:   postRepo,
		actionRepo: actionRepo,
	}
}

func (s *CounterSyncJob) Run() {
	traceID := "job-counter-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	// 先改名再消费，同步期间新增的脏标记落到下一轮
	err := redis.Rename(ctx, consts.PostDirtyKey, consts.PostDirtyProcessing)
	if err != nil {
		return
	}

	postIDs, err := redis.GetSet(ctx, consts.PostDirtyProcessing)
	if err != nil {
		log.ErrorContext(ctx, "get post dirty set error", "err", err)
		return
	}

	synced := 0
	for _, pid := range postIDs {
		if err := s.syncPost(ctx, pid); err != nil {
			log.ErrorContext(ctx, "sync post counters error", "pid", pid, "err", err)
			continue
		}
		synced++
	}

	err = redis.DeleteKey(ctx, consts.PostDirtyProcessing)
	if err != nil {
		log.ErrorContext(ctx, "delete post processing set error", "err", err)
	}

	log.InfoContext(ctx, "sync post counters success", "post_count", synced)
}

func (s *CounterSyncJob) syncPost(ctx context.Context, postID string) error {
	post, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil || post.IsDeleted {
		return nil
	}

	// 浏览明细是唯一真相，帖子上的计数只是冗余
	views, err := s.actionRepo.GetViews(ctx, postID)
	if err != nil {
		return err
	}
	viewCount := int64(len(views))

	if post.ViewCount != viewCount {
		log.WarnContext(ctx, "view count drift repaired",
			"pid", postID, "stored", post.ViewCount, "actual", viewCount)
		if err := s.postRepo.UpdateFields(ctx, postID, map[string]interface{}{
			"viewCount": viewCount,
		}); err != nil {
			return err
		}
	}

	reactions, err := s.actionRepo.GetReactions(ctx, postID)
	if err != nil {
		return err
	}
	counts := make(map[string]int64, len(model.ReactionTypes))
	for _, t := range model.ReactionTypes {
		counts[t] = 0
	}
	for _, r := range reactions {
		counts[r.Type]++
	}

	comments, err := s.actionRepo.GetComments(ctx, postID)
	if err != nil {
		return err
	}

	// 刷新计数缓存
	_ = redis.SetWithExpiration(ctx, consts.PostViewKey+postID, viewCount, countCacheExpiration)
	if data, err := json.Marshal(counts); err == nil {
		_ = redis.SetWithExpiration(ctx, consts.PostReactionKey+postID, string(data), countCacheExpiration)
	}
	_ = redis.SetWithExpiration(ctx, consts.PostCommentKey+postID, int64(len(comments)), countCacheExpiration)

	return nil
}
