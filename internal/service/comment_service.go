package service

import (
	"Classfeed/internal/model"
	"Classfeed/internal/pkg/consts"
	"Classfeed/internal/pkg/redis"
	"Classfeed/internal/repository"
	"context"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CommentService 评论流：整段历史随每次变更全量下发，
// 不分页是已知的规模局限，这里不做修复。
type CommentService interface {
	CreateComment(ctx context.Context, author model.UserSnapshot, postID, content string) (*model.Comment, error)
	UpdateComment(ctx context.Context, actor model.UserSnapshot, postID, commentID, content string) error
	DeleteComment(ctx context.Context, actor model.UserSnapshot, postID, commentID string) error
	ListComments(ctx context.Context, postID string) ([]*model.Comment, error)
	GetCommentCount(ctx context.Context, postID string) (int64, error)
}

type commentServiceImpl struct {
	actionRepo repository.ActionRepo
	postRepo   repository.PostRepo
}

func NewCommentService(actionRepo repository.ActionRepo, postRepo repository.PostRepo) CommentService {
	return &commentServiceImpl{
		actionRepo: actionRepo,
		postRepo:   postRepo,
	}
}

func (s *commentServiceImpl) CreateComment(ctx context.Context, author model.UserSnapshot, postID, content string) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrContentEmpty
	}
	if err := s.postCheck(ctx, postID); err != nil {
		return nil, err
	}

	id, err := s.actionRepo.NewCommentID(ctx, postID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	comment := &model.Comment{
		ID:        id,
		PostID:    postID,
		Author:    author,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.actionRepo.SaveComment(ctx, comment); err != nil {
		return nil, err
	}

	s.invalidateCount(ctx, postID)
	return comment, nil
}

// UpdateComment 仅作者本人可编辑，updatedAt 前移即视为"已编辑"
func (s *commentServiceImpl) UpdateComment(ctx context.Context, actor model.UserSnapshot, postID, commentID, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrContentEmpty
	}

	comment, err := s.actionRepo.GetComment(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	if comment.Author.ID != actor.ID {
		return UnauthorizedError
	}

	comment.Content = content
	comment.UpdatedAt = time.Now()
	return s.actionRepo.SaveComment(ctx, comment)
}

// DeleteComment 作者本人或特权角色可删，硬删除
func (s *commentServiceImpl) DeleteComment(ctx context.Context, actor model.UserSnapshot, postID, commentID string) error {
	comment, err := s.actionRepo.GetComment(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	if comment.Author.ID != actor.ID && !model.IsPrivileged(actor.Role) {
		return UnauthorizedError
	}

	if err := s.actionRepo.RemoveComment(ctx, postID, commentID); err != nil {
		return err
	}

	s.invalidateCount(ctx, postID)
	return nil
}

// ListComments 最新在前
func (s *commentServiceImpl) ListComments(ctx context.Context, postID string) ([]*model.Comment, error) {
	byID, err := s.actionRepo.GetComments(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments := make([]*model.Comment, 0, len(byID))
	for _, c := range byID {
		comments = append(comments, c)
	}
	SortCommentsNewestFirst(comments)
	return comments, nil
}

// GetCommentCount 旁路缓存，未命中回源计数并回填，对账任务定期重算
func (s *commentServiceImpl) GetCommentCount(ctx context.Context, postID string) (int64, error) {
	key := consts.PostCommentKey + postID
	count, err := redis.GetInt64(ctx, key)
	if err == nil {
		return count, nil
	}

	if err := s.postCheck(ctx, postID); err != nil {
		return 0, err
	}

	byID, err := s.actionRepo.GetComments(ctx, postID)
	if err != nil {
		return 0, err
	}

	total := int64(len(byID))
	_ = redis.SetWithExpiration(ctx, key, strconv.FormatInt(total, 10), countCacheExpiration)
	return total, nil
}

// invalidateCount 评论增删后废弃计数缓存，并把帖子标脏
func (s *commentServiceImpl) invalidateCount(ctx context.Context, postID string) {
	_ = redis.DeleteKey(ctx, consts.PostCommentKey+postID)
	_ = redis.SAdd(ctx, consts.PostDirtyKey, postID)
}

func (s *commentServiceImpl) postCheck(ctx context.Context, postID string) error {
	post, err := s.postRepo.Get(ctx, postID)
	if err != nil || post == nil || post.IsDeleted {
		return ErrPostNotFound
	}
	return nil
}

// SortCommentsNewestFirst 评论排序规则，订阅端合并快照时也用它
func SortCommentsNewestFirst(comments []*model.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID > comments[j].ID
		}
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
}
