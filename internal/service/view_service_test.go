package service

import (
	"Classfeed/internal/docstore"
	"Classfeed/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViewFixture(t *testing.T) (ViewService, repository.ActionRepo, repository.PostRepo, string) {
	t.Helper()
	store := docstore.NewMemoryStore()
	postRepo := repository.NewPostRepo(store)
	actionRepo := repository.NewActionRepo(store)

	post, err := NewPostService(postRepo, nil).CreatePost(context.Background(), tutor, "一条帖子", nil)
	require.NoError(t, err)

	return NewViewService(actionRepo, postRepo), actionRepo, postRepo, post.ID
}

func TestAddViewDeduplicates(t *testing.T) {
	svc, actionRepo, _, postID := newViewFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.AddView(ctx, student, postID))

	first, err := actionRepo.GetView(ctx, postID, student.ID)
	require.NoError(t, err)
	require.NotNil(t, first)

	// 同一用户再看只刷新时间，不再加计数
	require.NoError(t, svc.AddView(ctx, student, postID))

	count, err := svc.GetViewCount(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	touched, err := actionRepo.GetView(ctx, postID, student.ID)
	require.NoError(t, err)
	assert.False(t, touched.ViewedAt.Before(first.ViewedAt))
}

func TestAddViewDistinctUsers(t *testing.T) {
	svc, actionRepo, _, postID := newViewFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.AddView(ctx, student, postID))
	require.NoError(t, svc.AddView(ctx, student2, postID))
	require.NoError(t, svc.AddView(ctx, staff, postID))

	count, err := svc.GetViewCount(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	views, err := actionRepo.GetViews(ctx, postID)
	require.NoError(t, err)
	assert.Len(t, views, 3)
}

func TestAddViewMissingPost(t *testing.T) {
	svc, _, _, _ := newViewFixture(t)
	err := svc.AddView(context.Background(), student, "no-such-post")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeletedPostRejectsViews(t *testing.T) {
	svc, _, postRepo, postID := newViewFixture(t)
	ctx := context.Background()

	require.NoError(t, postRepo.UpdateFields(ctx, postID, map[string]any{"isDeleted": true}))

	err := svc.AddView(ctx, student, postID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}
