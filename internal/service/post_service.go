package service

import (
	"Classfeed/internal/model"
	"Classfeed/internal/pkg/consts"
	"Classfeed/internal/pkg/kafka"
	"Classfeed/internal/repository"
	"context"
	"sort"
	"strings"
	"time"
)

// PostService 帖子生命周期状态机：pending / approved / rejected，
// 外加正交的墓碑标记。墓碑一旦落下即为终态。
type PostService interface {
	CreatePost(ctx context.Context, author model.UserSnapshot, content string, attachments []model.Attachment) (*model.Post, error)
	GetPost(ctx context.Context, viewer model.UserSnapshot, postID string) (*model.Post, error)
	ListFeed(ctx context.Context, viewer model.UserSnapshot) ([]*model.Post, error)
	ListPending(ctx context.Context) ([]*model.Post, error)
	ModeratePost(ctx context.Context, moderator model.UserSnapshot, postID string, approve bool, reason string) error
	EditPost(ctx context.Context, editor model.UserSnapshot, postID, content string) error
	ResubmitPost(ctx context.Context, author model.UserSnapshot, postID, content string, attachments []model.Attachment) error
	DeletePost(ctx context.Context, actor model.UserSnapshot, postID string) error
}

type postServiceImpl struct {
	postRepo repository.PostRepo
	events   *kafka.Producer
}

func NewPostService(postRepo repository.PostRepo, events *kafka.Producer) PostService {
	return &postServiceImpl{
		postRepo: postRepo,
		events:   events,
	}
}

// CreatePost 特权角色发帖直接生效，学生发帖进入待审核
func (s *postServiceImpl) CreatePost(ctx context.Context, author model.UserSnapshot, content string, attachments []model.Attachment) (*model.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrContentEmpty
	}

	id, err := s.postRepo.NewID(ctx)
	if err != nil {
		return nil, err
	}

	status := model.PostStatusPending
	if model.IsPrivileged(author.Role) {
		status = model.PostStatusApproved
	}

	now := time.Now()
	post := &model.Post{
		ID:          id,
		Author:      author,
		Content:     content,
		Attachments: attachments,
		Status:      status,
		IsApproved:  status == model.PostStatusApproved,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.postRepo.Save(ctx, post); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, &kafka.FeedEvent{
		Type:    consts.FeedEventPostCreated,
		PostID:  post.ID,
		ActorID: author.ID,
		At:      now,
	})

	return post, nil
}

func (s *postServiceImpl) GetPost(ctx context.Context, viewer model.UserSnapshot, postID string) (*model.Post, error) {
	post, err := s.getLivePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(viewer) {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// ListFeed 按可见性过滤后的全量列表，最新在前
func (s *postServiceImpl) ListFeed(ctx context.Context, viewer model.UserSnapshot) ([]*model.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]*model.Post, 0, len(posts))
	for _, p := range posts {
		if p.VisibleTo(viewer) {
			visible = append(visible, p)
		}
	}

	sortNewestFirst(visible)
	return visible, nil
}

// ListPending 审核队列，入口处已由路由限定特权角色
func (s *postServiceImpl) ListPending(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]*model.Post, 0)
	for _, p := range posts {
		if !p.IsDeleted && p.Status == model.PostStatusPending {
			pending = append(pending, p)
		}
	}

	sortNewestFirst(pending)
	return pending, nil
}

// ModeratePost 只能从 pending 出发：通过或拒绝，并记录审核人快照
func (s *postServiceImpl) ModeratePost(ctx context.Context, moderator model.UserSnapshot, postID string, approve bool, reason string) error {
	post, err := s.getLivePost(ctx, postID)
	if err != nil {
		return err
	}
	if !Allowed(ActionModerate, moderator, post) {
		return UnauthorizedError
	}
	if post.Status != model.PostStatusPending {
		return ErrPostNotPending
	}

	now := time.Now()
	fields := map[string]any{
		"moderator": moderator,
		"updatedAt": now,
	}
	if approve {
		fields["status"] = model.PostStatusApproved
		fields["isApproved"] = true
		fields["rejectionReason"] = nil
	} else {
		if strings.TrimSpace(reason) == "" {
			return ErrRejectReasonEmpty
		}
		fields["status"] = model.PostStatusRejected
		fields["isApproved"] = false
		fields["rejectionReason"] = reason
	}

	if err := s.postRepo.UpdateFields(ctx, postID, fields); err != nil {
		return err
	}

	detail := "rejected"
	if approve {
		detail = "approved"
	}
	s.events.Publish(ctx, &kafka.FeedEvent{
		Type:    consts.FeedEventPostModerated,
		PostID:  postID,
		ActorID: moderator.ID,
		Detail:  detail,
		At:      now,
	})

	return nil
}

// EditPost 仅作者可编辑；学生作者的编辑会把帖子打回待审核，
// 即使原先已通过，同时清掉过期的审核结论
func (s *postServiceImpl) EditPost(ctx context.Context, editor model.UserSnapshot, postID, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrContentEmpty
	}

	post, err := s.getLivePost(ctx, postID)
	if err != nil {
		return err
	}
	if !Allowed(ActionEdit, editor, post) {
		return UnauthorizedError
	}

	fields := map[string]any{
		"content":   content,
		"updatedAt": time.Now(),
	}
	if editor.Role == model.RoleStudent {
		fields["status"] = model.PostStatusPending
		fields["isApproved"] = false
		fields["moderator"] = nil
		fields["rejectionReason"] = nil
	}

	return s.postRepo.UpdateFields(ctx, postID, fields)
}

// ResubmitPost 只有被拒绝的帖子可以重新提交，回到待审核并清掉拒绝理由
func (s *postServiceImpl) ResubmitPost(ctx context.Context, author model.UserSnapshot, postID, content string, attachments []model.Attachment) error {
	if strings.TrimSpace(content) == "" {
		return ErrContentEmpty
	}

	post, err := s.getLivePost(ctx, postID)
	if err != nil {
		return err
	}
	if !Allowed(ActionResubmit, author, post) {
		return UnauthorizedError
	}
	if post.Status != model.PostStatusRejected {
		return ErrPostNotRejected
	}

	return s.postRepo.UpdateFields(ctx, postID, map[string]any{
		"content":         content,
		"attachments":     attachments,
		"status":          model.PostStatusPending,
		"isApproved":      false,
		"moderator":       nil,
		"rejectionReason": nil,
		"updatedAt":       time.Now(),
	})
}

// DeletePost 落墓碑。重复删除是空操作，不报错也不产生副作用。
func (s *postServiceImpl) DeletePost(ctx context.Context, actor model.UserSnapshot, postID string) error {
	post, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if !Allowed(ActionDelete, actor, post) {
		return UnauthorizedError
	}
	if post.IsDeleted {
		return nil
	}

	now := time.Now()
	if err := s.postRepo.UpdateFields(ctx, postID, map[string]any{
		"isDeleted": true,
		"updatedAt": now,
	}); err != nil {
		return err
	}

	s.events.Publish(ctx, &kafka.FeedEvent{
		Type:    consts.FeedEventPostDeleted,
		PostID:  postID,
		ActorID: actor.ID,
		At:      now,
	})

	return nil
}

// getLivePost 墓碑帖对任何操作都视同不存在
func (s *postServiceImpl) getLivePost(ctx context.Context, postID string) (*model.Post, error) {
	post, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.IsDeleted {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func sortNewestFirst(posts []*model.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}
