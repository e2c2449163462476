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

var (
	student  = model.UserSnapshot{ID: "u-student", Name: "小明", Role: model.RoleStudent}
	student2 = model.UserSnapshot{ID: "u-student2", Name: "小红", Role: model.RoleStudent}
	tutor    = model.UserSnapshot{ID: "u-tutor", Name: "导师", Role: model.RoleTutor}
	staff    = model.UserSnapshot{ID: "u-staff", Name: "教务", Role: model.RoleStaff}
	admin    = model.UserSnapshot{ID: "u-admin", Name: "管理员", Role: model.RoleAdmin}
)

func newPostService(t *testing.T) (PostService, repository.PostRepo) {
	t.Helper()
	store := docstore.NewMemoryStore()
	postRepo := repository.NewPostRepo(store)
	return NewPostService(postRepo, nil), postRepo
}

func TestCreatePostStudentPending(t *testing.T) {
	svc, _ := newPostService(t)

	post, err := svc.CreatePost(context.Background(), student, "第一条帖子", nil)
	require.NoError(t, err)

	assert.Equal(t, model.PostStatusPending, post.Status)
	assert.False(t, post.IsApproved)
	assert.Equal(t, student.ID, post.Author.ID)
	assert.NotEmpty(t, post.ID)
}

func TestCreatePostPrivilegedAutoApproved(t *testing.T) {
	svc, _ := newPostService(t)

	for _, author := range []model.UserSnapshot{tutor, staff, admin} {
		post, err := svc.CreatePost(context.Background(), author, "公告", nil)
		require.NoError(t, err)
		assert.Equal(t, model.PostStatusApproved, post.Status)
		assert.True(t, post.IsApproved)
	}
}

func TestCreatePostEmptyContent(t *testing.T) {
	svc, _ := newPostService(t)

	_, err := svc.CreatePost(context.Background(), student, "   ", nil)
	assert.ErrorIs(t, err, ErrContentEmpty)
}

func TestGetPostVisibility(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, student, "待审核内容", nil)
	require.NoError(t, err)

	// 作者和特权角色可见
	_, err = svc.GetPost(ctx, student, post.ID)
	assert.NoError(t, err)
	_, err = svc.GetPost(ctx, tutor, post.ID)
	assert.NoError(t, err)

	// 其他学生不可见，表现为不存在而不是无权限
	_, err = svc.GetPost(ctx, student2, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestModerateApprove(t *testing.T) {
	svc, repo := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, student, "等待审核", nil)
	require.NoError(t, err)

	err = svc.ModeratePost(ctx, tutor, post.ID, true, "")
	require.NoError(t, err)

	got, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusApproved, got.Status)
	assert.True(t, got.IsApproved)
	require.NotNil(t, got.Moderator)
	assert.Equal(t, tutor.ID, got.Moderator.ID)
	assert.Nil(t, got.RejectionReason)

	// 通过后对所有人可见
	_, err = svc.GetPost(ctx, student2, post.ID)
	assert.NoError(t, err)
}

func TestModerateRejectRequiresReason(t *testing.T) {
	svc, repo := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, student, "等待审核", nil)
	require.NoError(t, err)

	err = svc.ModeratePost(ctx, staff, post.ID, false, "  ")
	assert.ErrorIs(t, err, ErrRejectReasonEmpty)

	err = svc.ModeratePost(ctx, staff, post.ID, false, "内容不符合规范")
	require.NoError(t, err)

	got, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusRejected, got.Status)
	require.NotNil(t, got.RejectionReason)
	assert.Equal(t, "内容不符合规范", *got.RejectionReason)
}

func TestModerateOnlyFromPending(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, student, "等待审核", nil)
	require.NoError(t, err)

	require.NoError(t, svc.ModeratePost(ctx, tutor, post.ID, true, ""))

	// 已通过的帖子不能再次裁决
	err = svc.ModeratePost(ctx, tutor, post.ID, false, "改判")
	assert.ErrorIs(t, err, ErrPostNotPending)
}

func TestModerateByStudentDenied(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, student, "等待审核", nil)
	require.NoError(t, err)

	err = svc.ModeratePost(ctx, student2, post.ID, true, "")
	assert.ErrorIs(t, err, UnauthorizedError)
}

func TestResubmitAfterReject(t *testing.T) {
	svc, repo := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, student, "初稿", nil)
	require.NoError(t, err)
	require.NoError(t, svc.ModeratePost(ctx, tutor, post.ID, false, "写得太随意"))

	err = svc.ResubmitPost(ctx, student, post.ID, "认真修改后的版本", nil)
	require.NoError(t, err)

	got, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusPending, got.Status)
	assert.Equal(t, "认真修改后的版本", got.Content)
	assert.Nil(t, got.RejectionReason)
	assert.Nil(t, got.Moderator)
}

func TestResubmitOnlyFromRejected(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, student, "初稿", nil)
	require.NoError(t, err)

	err = svc.ResubmitPost(ctx, student, post.ID, "改了", nil)
	assert.ErrorIs(t, err, ErrPostNotRejected)
}

func TestResubmitOnlyByAuthor(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, student, "初稿", nil)
	require.NoError(t, err)
	require.NoError(t, svc.ModeratePost(ctx, tutor, post.ID, false, "拒绝"))

	err = svc.ResubmitPost(ctx, student2, post.ID, "替别人改", nil)
	assert.ErrorIs(t, err, UnauthorizedError)
}

func TestEditByStudentResetsModeration(t *testing.T) {
	svc, repo := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, student, "初稿", nil)
	require.NoError(t, err)
	require.NoError(t, svc.ModeratePost(ctx, tutor, post.ID, true, ""))

	err = svc.EditPost(ctx, student, post.ID, "改过的内容")
	require.NoError(t, err)

	got, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusPending, got.Status)
	assert.False(t, got.IsApproved)
	assert.Nil(t, got.Moderator)
	assert.Equal(t, "改过的内容", got.Content)
}

func TestEditByPrivilegedAuthorKeepsStatus(t *testing.T) {
	svc, repo := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, tutor, "公告", nil)
	require.NoError(t, err)

	err = svc.EditPost(ctx, tutor, post.ID, "更新后的公告")
	require.NoError(t, err)

	got, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusApproved, got.Status)
	assert.True(t, got.IsApproved)
}

func TestEditOnlyByAuthor(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, student, "初稿", nil)
	require.NoError(t, err)

	err = svc.EditPost(ctx, student2, post.ID, "别人的修改")
	assert.ErrorIs(t, err, UnauthorizedError)
}

func TestDeletePostTombstone(t *testing.T) {
	svc, repo := newPostService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, student, "将被删除", nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, student, post.ID))

	got, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)

	// 删除后对所有角色不可见
	_, err = svc.GetPost(ctx, admin, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	// 重复删除是空操作
	assert.NoError(t, svc.DeletePost(ctx, student, post.ID))
}

func TestDeletePermissions(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	// 学生不能删别人的帖子
	post, err := svc.CreatePost(ctx, student, "学生的帖子", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeletePost(ctx, student2, post.ID), UnauthorizedError)

	// 导师可以删学生的帖子
	assert.NoError(t, svc.DeletePost(ctx, tutor, post.ID))

	// 导师不能删教务的帖子，管理员可以
	staffPost, err := svc.CreatePost(ctx, staff, "教务通知", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeletePost(ctx, tutor, staffPost.ID), UnauthorizedError)
	assert.NoError(t, svc.DeletePost(ctx, admin, staffPost.ID))
}

func TestDeleteMissingPost(t *testing.T) {
	svc, _ := newPostService(t)
	err := svc.DeletePost(context.Background(), admin, "no-such-post")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestListFeedFiltersAndSorts(t *testing.T) {
	svc, repo := newPostService(t)
	ctx := context.Background()

	p1, err := svc.CreatePost(ctx, tutor, "第一条", nil)
	require.NoError(t, err)
	p2, err := svc.CreatePost(ctx, student, "学生待审核", nil)
	require.NoError(t, err)
	p3, err := svc.CreatePost(ctx, staff, "第三条", nil)
	require.NoError(t, err)

	// 错开创建时间保证排序可断言
	require.NoError(t, repo.UpdateFields(ctx, p1.ID, map[string]any{"createdAt": time.Now().Add(-2 * time.Hour)}))
	require.NoError(t, repo.UpdateFields(ctx, p2.ID, map[string]any{"createdAt": time.Now().Add(-1 * time.Hour)}))

	// 旁观学生只能看到已通过的两条
	feed, err := svc.ListFeed(ctx, student2)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, p3.ID, feed[0].ID)
	assert.Equal(t, p1.ID, feed[1].ID)

	// 作者能看到自己的待审核帖子
	feed, err = svc.ListFeed(ctx, student)
	require.NoError(t, err)
	assert.Len(t, feed, 3)

	// 特权角色看到全部
	feed, err = svc.ListFeed(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, feed, 3)

	// 删除的帖子从列表消失
	require.NoError(t, svc.DeletePost(ctx, staff, p3.ID))
	feed, err = svc.ListFeed(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, feed, 2)
}

func TestListPending(t *testing.T) {
	svc, _ := newPostService(t)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, tutor, "已通过", nil)
	require.NoError(t, err)
	p, err := svc.CreatePost(ctx, student, "待审核", nil)
	require.NoError(t, err)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, p.ID, pending[0].ID)
}
