package service

import (
	"Classfeed/internal/docstore"
	"Classfeed/internal/model"
	"Classfeed/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentFixture(t *testing.T) (CommentService, string) {
	t.Helper()
	store := docstore.NewMemoryStore()
	postRepo := repository.NewPostRepo(store)
	actionRepo := repository.NewActionRepo(store)

	post, err := NewPostService(postRepo, nil).CreatePost(context.Background(), tutor, "一条帖子", nil)
	require.NoError(t, err)

	return NewCommentService(actionRepo, postRepo), post.ID
}

func TestCreateComment(t *testing.T) {
	svc, postID := newCommentFixture(t)
	ctx := context.Background()

	comment, err := svc.CreateComment(ctx, student, postID, "沙发")
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, postID, comment.PostID)
	assert.False(t, comment.Edited())

	_, err = svc.CreateComment(ctx, student, postID, "  ")
	assert.ErrorIs(t, err, ErrContentEmpty)

	_, err = svc.CreateComment(ctx, student, "no-such-post", "评论")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	svc, postID := newCommentFixture(t)
	ctx := context.Background()

	comment, err := svc.CreateComment(ctx, student, postID, "初稿")
	require.NoError(t, err)

	// 非作者不能编辑，特权角色也不行
	err = svc.UpdateComment(ctx, admin, postID, comment.ID, "篡改")
	assert.ErrorIs(t, err, UnauthorizedError)

	err = svc.UpdateComment(ctx, student, postID, comment.ID, "改过了")
	require.NoError(t, err)

	comments, err := svc.ListComments(ctx, postID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "改过了", comments[0].Content)
	assert.True(t, comments[0].Edited())
}

func TestDeleteCommentAuthorOrPrivileged(t *testing.T) {
	svc, postID := newCommentFixture(t)
	ctx := context.Background()

	c1, err := svc.CreateComment(ctx, student, postID, "一楼")
	require.NoError(t, err)
	c2, err := svc.CreateComment(ctx, student, postID, "二楼")
	require.NoError(t, err)

	// 其他学生不能删
	err = svc.DeleteComment(ctx, student2, postID, c1.ID)
	assert.ErrorIs(t, err, UnauthorizedError)

	// 作者本人可删
	require.NoError(t, svc.DeleteComment(ctx, student, postID, c1.ID))

	// 特权角色可删
	require.NoError(t, svc.DeleteComment(ctx, staff, postID, c2.ID))

	comments, err := svc.ListComments(ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	// 硬删除，再删报不存在
	err = svc.DeleteComment(ctx, student, postID, c1.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestGetCommentCount(t *testing.T) {
	svc, postID := newCommentFixture(t)
	ctx := context.Background()

	count, err := svc.GetCommentCount(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	c1, err := svc.CreateComment(ctx, student, postID, "一楼")
	require.NoError(t, err)
	_, err = svc.CreateComment(ctx, student2, postID, "二楼")
	require.NoError(t, err)

	count, err = svc.GetCommentCount(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, svc.DeleteComment(ctx, student, postID, c1.ID))
	count, err = svc.GetCommentCount(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, err = svc.GetCommentCount(ctx, "no-such-post")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestListCommentsNewestFirst(t *testing.T) {
	svc, postID := newCommentFixture(t)
	ctx := context.Background()

	first, err := svc.CreateComment(ctx, student, postID, "先来的")
	require.NoError(t, err)
	second, err := svc.CreateComment(ctx, student2, postID, "后到的")
	require.NoError(t, err)

	comments, err := svc.ListComments(ctx, postID)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	if comments[0].CreatedAt.Equal(comments[1].CreatedAt) {
		// 同一时刻按 ID 倒序兜底
		assert.True(t, comments[0].ID > comments[1].ID)
	} else {
		assert.Equal(t, second.ID, comments[0].ID)
		assert.Equal(t, first.ID, comments[1].ID)
	}
}

func TestSortCommentsNewestFirstStable(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	comments := []*model.Comment{
		{ID: "a", CreatedAt: base},
		{ID: "c", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(time.Minute)},
	}

	SortCommentsNewestFirst(comments)

	assert.Equal(t, "b", comments[0].ID)
	assert.Equal(t, "c", comments[1].ID)
	assert.Equal(t, "a", comments[2].ID)
}
