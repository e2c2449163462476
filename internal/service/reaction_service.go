package service

import (
	"Classfeed/internal/model"
	"Classfeed/internal/pkg/consts"
	"Classfeed/internal/pkg/redis"
	"Classfeed/internal/repository"
	"context"
	"time"

	"github.com/goccy/go-json"
)

// ToggleResult 切换表情的三种结局
type ToggleResult string

const (
	ToggleAdded   ToggleResult = "added"
	ToggleRemoved ToggleResult = "removed"
	ToggleChanged ToggleResult = "changed"
)

const countCacheExpiration = 7 * 24 * time.Hour

// ReactionService 每个用户对同一帖子至多一条表情记录。
// 同类型再点一次是取消，不同类型是改写。
type ReactionService interface {
	ToggleReaction(ctx context.Context, user model.UserSnapshot, postID, reactionType string) (ToggleResult, error)
	GetCounts(ctx context.Context, postID string) (map[string]int64, error)
}

type reactionServiceImpl struct {
	actionRepo repository.ActionRepo
	postRepo   repository.PostRepo
}

func NewReactionService(actionRepo repository.ActionRepo, postRepo repository.PostRepo) ReactionService {
	return &reactionServiceImpl{
		actionRepo: actionRepo,
		postRepo:   postRepo,
	}
}

func (s *reactionServiceImpl) ToggleReaction(ctx context.Context, user model.UserSnapshot, postID, reactionType string) (ToggleResult, error) {
	if !model.IsValidReactionType(reactionType) {
		return "", ErrReactionTypeInvalid
	}
	if err := s.postCheck(ctx, postID); err != nil {
		return "", err
	}

	existing, err := s.actionRepo.GetReaction(ctx, postID, user.ID)
	if err != nil {
		return "", err
	}

	now := time.Now()
	var result ToggleResult

	switch {
	case existing == nil:
		err = s.actionRepo.SaveReaction(ctx, postID, user.ID, &model.Reaction{
			Type:      reactionType,
			User:      user,
			CreatedAt: now,
			UpdatedAt: now,
		})
		result = ToggleAdded
	case existing.Type == reactionType:
		err = s.actionRepo.RemoveReaction(ctx, postID, user.ID)
		result = ToggleRemoved
	default:
		// 换类型只动 type 和 updatedAt，createdAt 保留首次表态的时间
		err = s.actionRepo.UpdateReaction(ctx, postID, user.ID, map[string]any{
			"type":      reactionType,
			"updatedAt": now,
		})
		result = ToggleChanged
	}

	if err != nil {
		return "", err
	}

	s.invalidateCounts(ctx, postID)
	return result, nil
}

// GetCounts 六种类型全部出现在结果里，没有记录的补零。
// 各类型计数之和恒等于表过态的去重用户数。
func (s *reactionServiceImpl) GetCounts(ctx context.Context, postID string) (map[string]int64, error) {
	key := consts.PostReactionKey + postID
	if cached, err := redis.GetValue(ctx, key); err == nil {
		counts := make(map[string]int64)
		if err := json.Unmarshal([]byte(cached), &counts); err == nil {
			return counts, nil
		}
	}

	reactions, err := s.actionRepo.GetReactions(ctx, postID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(model.ReactionTypes))
	for _, t := range model.ReactionTypes {
		counts[t] = 0
	}
	for _, r := range reactions {
		if _, ok := counts[r.Type]; ok {
			counts[r.Type]++
		}
	}

	if payload, err := json.Marshal(counts); err == nil {
		_ = redis.SetWithExpiration(ctx, key, payload, countCacheExpiration)
	}

	return counts, nil
}

func (s *reactionServiceImpl) postCheck(ctx context.Context, postID string) error {
	post, err := s.postRepo.Get(ctx, postID)
	if err != nil || post == nil || post.IsDeleted {
		return ErrPostNotFound
	}
	return nil
}

func (s *reactionServiceImpl) invalidateCounts(ctx context.Context, postID string) {
	_ = redis.DeleteKey(ctx, consts.PostReactionKey+postID)
	_ = redis.SAdd(ctx, consts.PostDirtyKey, postID)
}
