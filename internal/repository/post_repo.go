package repository

import (
	"Classfeed/internal/docstore"
	"Classfeed/internal/model"
	"context"
	"errors"
)

type PostRepo interface {
	NewID(ctx context.Context) (string, error)
	Get(ctx context.Context, postID string) (*model.Post, error)
	Save(ctx context.Context, post *model.Post) error
	UpdateFields(ctx context.Context, postID string, fields map[string]any) error
	List(ctx context.Context) ([]*model.Post, error)
}

type postRepoImpl struct {
	store docstore.Store
}

func NewPostRepo(store docstore.Store) PostRepo {
	return &postRepoImpl{store: store}
}

func (s *postRepoImpl) NewID(ctx context.Context) (string, error) {
	return s.store.Push(ctx, "posts")
}

// Get 不存在的帖子返回 (nil, nil)，由调用方决定如何报错
func (s *postRepoImpl) Get(ctx context.Context, postID string) (*model.Post, error) {
	var post model.Post
	err := s.store.ReadOnce(ctx, PostPath(postID), &post)
	if errors.Is(err, docstore.ErrNoValue) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *postRepoImpl) Save(ctx context.Context, post *model.Post) error {
	return s.store.Write(ctx, PostPath(post.ID), post)
}

func (s *postRepoImpl) UpdateFields(ctx context.Context, postID string, fields map[string]any) error {
	return s.store.Update(ctx, PostPath(postID), fields)
}

// List 读取 posts 子树的全量值，墓碑帖也在其中，过滤交给上层
func (s *postRepoImpl) List(ctx context.Context) ([]*model.Post, error) {
	byID := make(map[string]*model.Post)
	err := s.store.ReadOnce(ctx, "posts", &byID)
	if errors.Is(err, docstore.ErrNoValue) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	posts := make([]*model.Post, 0, len(byID))
	for _, p := range byID {
		posts = append(posts, p)
	}
	return posts, nil
}
