package feed

import (
	"Classfeed/internal/docstore"
	"Classfeed/internal/model"
	"Classfeed/internal/repository"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore 统计底层订阅的建立与取消次数
type countingStore struct {
	docstore.Store

	mu         sync.Mutex
	subscribes int
	cancels    int
}

func (s *countingStore) Subscribe(ctx context.Context, path string, fn func(docstore.Snapshot)) (docstore.CancelFunc, error) {
	s.mu.Lock()
	s.subscribes++
	s.mu.Unlock()

	cancel, err := s.Store.Subscribe(ctx, path, fn)
	if err != nil {
		return nil, err
	}
	return func() {
		s.mu.Lock()
		s.cancels++
		s.mu.Unlock()
		cancel()
	}, nil
}

func (s *countingStore) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribes, s.cancels
}

func newMuxFixture() (*countingStore, *Reconciler, *Multiplexer) {
	store := &countingStore{Store: docstore.NewMemoryStore()}
	rec := NewReconciler()
	return store, rec, NewMultiplexer(store, rec)
}

func TestTrackOpensThreeTopics(t *testing.T) {
	store, rec, mux := newMuxFixture()
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, repository.PostPath("p1"), &model.Post{ID: "p1", Content: "正文"}))

	session := mux.NewSession()
	defer session.Close()
	session.Track(ctx, []string{"p1"})

	subs, _ := store.counts()
	assert.Equal(t, 3, subs)

	// 初始快照已经合并进聚合
	agg, ok := rec.Aggregate("p1")
	require.True(t, ok)
	require.NotNil(t, agg.Post)
	assert.Equal(t, "正文", agg.Post.Content)
}

func TestSessionsShareUnderlyingSubscription(t *testing.T) {
	store, _, mux := newMuxFixture()
	ctx := context.Background()

	s1 := mux.NewSession()
	defer s1.Close()
	s2 := mux.NewSession()
	defer s2.Close()

	s1.Track(ctx, []string{"p1"})
	s2.Track(ctx, []string{"p1"})

	subs, _ := store.counts()
	assert.Equal(t, 3, subs)
}

func TestReleaseCancelsAtZero(t *testing.T) {
	store, rec, mux := newMuxFixture()
	ctx := context.Background()

	s1 := mux.NewSession()
	s2 := mux.NewSession()
	s1.Track(ctx, []string{"p1"})
	s2.Track(ctx, []string{"p1"})

	// 还有别的会话在用，不取消
	s1.Close()
	_, cancels := store.counts()
	assert.Equal(t, 0, cancels)

	// 最后一个引用退掉，三个主题全部取消，聚合被丢弃
	s2.Close()
	_, cancels = store.counts()
	assert.Equal(t, 3, cancels)

	_, ok := rec.Aggregate("p1")
	assert.False(t, ok)
}

func TestTrackDiffsFullSet(t *testing.T) {
	store, _, mux := newMuxFixture()
	ctx := context.Background()

	session := mux.NewSession()
	defer session.Close()

	session.Track(ctx, []string{"p1", "p2"})
	subs, cancels := store.counts()
	assert.Equal(t, 6, subs)
	assert.Equal(t, 0, cancels)

	// p1 从全集消失即退订，p2 保留不重开
	session.Track(ctx, []string{"p2"})
	subs, cancels = store.counts()
	assert.Equal(t, 6, subs)
	assert.Equal(t, 3, cancels)
}

func TestUpdatesFlowThroughTopics(t *testing.T) {
	store, rec, mux := newMuxFixture()
	ctx := context.Background()

	session := mux.NewSession()
	defer session.Close()
	session.Track(ctx, []string{"p1"})

	require.NoError(t, store.Write(ctx, repository.PostPath("p1"), &model.Post{ID: "p1", Content: "正文"}))
	require.NoError(t, store.Write(ctx, repository.CommentPath("p1", "c1"), &model.Comment{ID: "c1", Content: "评论"}))
	require.NoError(t, store.Write(ctx, repository.ReactionPath("p1", "u1"), &model.Reaction{Type: model.ReactionLike}))

	agg, ok := rec.Aggregate("p1")
	require.True(t, ok)
	require.NotNil(t, agg.Post)
	require.Len(t, agg.Comments, 1)
	assert.EqualValues(t, 1, agg.ReactionCounts[model.ReactionLike])
	assert.Equal(t, 1, agg.Reactors)
}

func TestTracksReflectsSessionSet(t *testing.T) {
	_, _, mux := newMuxFixture()
	ctx := context.Background()

	session := mux.NewSession()
	defer session.Close()

	// 未声明过的帖子不在追踪集里，别的会话的追踪也不算
	assert.False(t, session.Tracks("p1"))
	other := mux.NewSession()
	defer other.Close()
	other.Track(ctx, []string{"p9"})
	assert.False(t, session.Tracks("p9"))

	session.Track(ctx, []string{"p1", "p2"})
	assert.True(t, session.Tracks("p1"))
	assert.True(t, session.Tracks("p2"))
	assert.False(t, session.Tracks("p3"))

	// 全集对账后消失的帖子不再追踪
	session.Track(ctx, []string{"p2"})
	assert.False(t, session.Tracks("p1"))
	assert.True(t, session.Tracks("p2"))
}

func TestTracksFalseAfterClose(t *testing.T) {
	_, _, mux := newMuxFixture()

	session := mux.NewSession()
	session.Track(context.Background(), []string{"p1"})
	require.True(t, session.Tracks("p1"))

	session.Close()
	assert.False(t, session.Tracks("p1"))
}

func TestCloseIsIdempotent(t *testing.T) {
	store, _, mux := newMuxFixture()
	ctx := context.Background()

	session := mux.NewSession()
	session.Track(ctx, []string{"p1"})

	session.Close()
	session.Close()
	// 关闭后的 Track 是空操作
	session.Track(ctx, []string{"p2"})

	subs, cancels := store.counts()
	assert.Equal(t, 3, subs)
	assert.Equal(t, 3, cancels)
}

func TestUntrackAll(t *testing.T) {
	store, _, mux := newMuxFixture()
	ctx := context.Background()

	s1 := mux.NewSession()
	s2 := mux.NewSession()
	s1.Track(ctx, []string{"p1"})
	s2.Track(ctx, []string{"p2"})

	mux.UntrackAll()

	_, cancels := store.counts()
	assert.Equal(t, 6, cancels)
}
