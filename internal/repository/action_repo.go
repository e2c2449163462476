package repository

import (
	"Classfeed/internal/docstore"
	"Classfeed/internal/model"
	"context"
	"errors"
)

// ActionRepo 帖子下挂的三类交互记录：表情、评论、浏览
type ActionRepo interface {
	GetReaction(ctx context.Context, postID, userID string) (*model.Reaction, error)
	SaveReaction(ctx context.Context, postID, userID string, reaction *model.Reaction) error
	UpdateReaction(ctx context.Context, postID, userID string, fields map[string]any) error
	RemoveReaction(ctx context.Context, postID, userID string) error
	GetReactions(ctx context.Context, postID string) (map[string]*model.Reaction, error)

	NewCommentID(ctx context.Context, postID string) (string, error)
	GetComment(ctx context.Context, postID, commentID string) (*model.Comment, error)
	SaveComment(ctx context.Context, comment *model.Comment) error
	RemoveComment(ctx context.Context, postID, commentID string) error
	GetComments(ctx context.Context, postID string) (map[string]*model.Comment, error)

	GetView(ctx context.Context, postID, userID string) (*model.View, error)
	SaveView(ctx context.Context, postID, userID string, view *model.View) error
	TouchView(ctx context.Context, postID, userID string, fields map[string]any) error
	GetViews(ctx context.Context, postID string) (map[string]*model.View, error)
}

type actionRepoImpl struct {
	store docstore.Store
}

func NewActionRepo(store docstore.Store) ActionRepo {
	return &actionRepoImpl{store: store}
}

func (s *actionRepoImpl) GetReaction(ctx context.Context, postID, userID string) (*model.Reaction, error) {
	var reaction model.Reaction
	err := s.store.ReadOnce(ctx, ReactionPath(postID, userID), &reaction)
	if errors.Is(err, docstore.ErrNoValue) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (s *actionRepoImpl) SaveReaction(ctx context.Context, postID, userID string, reaction *model.Reaction) error {
	return s.store.Write(ctx, ReactionPath(postID, userID), reaction)
}

func (s *actionRepoImpl) UpdateReaction(ctx context.Context, postID, userID string, fields map[string]any) error {
	return s.store.Update(ctx, ReactionPath(postID, userID), fields)
}

func (s *actionRepoImpl) RemoveReaction(ctx context.Context, postID, userID string) error {
	return s.store.Remove(ctx, ReactionPath(postID, userID))
}

// GetReactions 全量读取帖子下的表情记录，键为 userId
func (s *actionRepoImpl) GetReactions(ctx context.Context, postID string) (map[string]*model.Reaction, error) {
	byUser := make(map[string]*model.Reaction)
	err := s.store.ReadOnce(ctx, ReactionsPath(postID), &byUser)
	if errors.Is(err, docstore.ErrNoValue) {
		return map[string]*model.Reaction{}, nil
	}
	if err != nil {
		return nil, err
	}
	return byUser, nil
}

func (s *actionRepoImpl) NewCommentID(ctx context.Context, postID string) (string, error) {
	return s.store.Push(ctx, CommentsPath(postID))
}

func (s *actionRepoImpl) GetComment(ctx context.Context, postID, commentID string) (*model.Comment, error) {
	var comment model.Comment
	err := s.store.ReadOnce(ctx, CommentPath(postID, commentID), &comment)
	if errors.Is(err, docstore.ErrNoValue) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *actionRepoImpl) SaveComment(ctx context.Context, comment *model.Comment) error {
	return s.store.Write(ctx, CommentPath(comment.PostID, comment.ID), comment)
}

// RemoveComment 评论是硬删除
func (s *actionRepoImpl) RemoveComment(ctx context.Context, postID, commentID string) error {
	return s.store.Remove(ctx, CommentPath(postID, commentID))
}

func (s *actionRepoImpl) GetComments(ctx context.Context, postID string) (map[string]*model.Comment, error) {
	byID := make(map[string]*model.Comment)
	err := s.store.ReadOnce(ctx, CommentsPath(postID), &byID)
	if errors.Is(err, docstore.ErrNoValue) {
		return map[string]*model.Comment{}, nil
	}
	if err != nil {
		return nil, err
	}
	return byID, nil
}

func (s *actionRepoImpl) GetView(ctx context.Context, postID, userID string) (*model.View, error) {
	var view model.View
	err := s.store.ReadOnce(ctx, ViewPath(postID, userID), &view)
	if errors.Is(err, docstore.ErrNoValue) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *actionRepoImpl) SaveView(ctx context.Context, postID, userID string, view *model.View) error {
	return s.store.Write(ctx, ViewPath(postID, userID), view)
}

func (s *actionRepoImpl) TouchView(ctx context.Context, postID, userID string, fields map[string]any) error {
	return s.store.Update(ctx, ViewPath(postID, userID), fields)
}

func (s *actionRepoImpl) GetViews(ctx context.Context, postID string) (map[string]*model.View, error) {
	byUser := make(map[string]*model.View)
	err := s.store.ReadOnce(ctx, ViewsPath(postID), &byUser)
	if errors.Is(err, docstore.ErrNoValue) {
		return map[string]*model.View{}, nil
	}
	if err != nil {
		return nil, err
	}
	return byUser, nil
}
