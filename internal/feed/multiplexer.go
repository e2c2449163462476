package feed

import (
	"Classfeed/internal/docstore"
	"Classfeed/internal/repository"
	"context"
	log "log/slog"
	"sync"
	"sync/atomic"
)

type topicKind string

const (
	topicPost      topicKind = "post"
	topicComments  topicKind = "comments"
	topicReactions topicKind = "reactions"
)

var topicKinds = []topicKind{topicPost, topicComments, topicReactions}

type topicKey struct {
	kind   topicKind
	postID string
}

type topicState struct {
	count     int
	cancel    docstore.CancelFunc
	cancelled *atomic.Bool
}

// Multiplexer 保证每个 (postId, 主题) 在底层至多一条订阅，
// 被多少个消费端要走都共享同一条，靠引用计数管理生命周期。
type Multiplexer struct {
	store docstore.Store
	rec   *Reconciler

	mu     sync.Mutex
	topics map[topicKey]*topicState
}

func NewMultiplexer(store docstore.Store, rec *Reconciler) *Multiplexer {
	return &Multiplexer{
		store:  store,
		rec:    rec,
		topics: make(map[topicKey]*topicState),
	}
}

// NewSession 每个消费端（如一条 WS 连接）持有自己的会话
func (m *Multiplexer) NewSession() *Session {
	return &Session{
		mux:     m,
		tracked: make(map[string]bool),
	}
}

// UntrackAll 整体收尾：退掉所有底层订阅
func (m *Multiplexer) UntrackAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, state := range m.topics {
		state.cancelled.Store(true)
		if state.cancel != nil {
			state.cancel()
		}
		delete(m.topics, key)
		m.rec.Forget(key.postID)
	}
}

// retain 计数加一，0→1 时真正打开底层订阅。
// 订阅失败降级为"该主题没有更新"，不向消费端抛错。
func (m *Multiplexer) retain(ctx context.Context, postID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, kind := range topicKinds {
		key := topicKey{kind: kind, postID: postID}
		if state, ok := m.topics[key]; ok {
			state.count++
			continue
		}

		state := &topicState{count: 1, cancelled: &atomic.Bool{}}
		m.topics[key] = state

		cancelled := state.cancelled
		k := kind
		cancel, err := m.store.Subscribe(ctx, pathFor(kind, postID), func(snap docstore.Snapshot) {
			// 取消之后仍在途的回调直接忽略
			if cancelled.Load() {
				return
			}
			m.dispatch(k, postID, snap)
		})
		if err != nil {
			log.Warn("feed subscription failed, topic degraded", "kind", string(kind), "postID", postID, "err", err)
			continue
		}
		state.cancel = cancel
	}
}

// release 计数减一，归零时取消底层订阅，且只取消一次。
// 计数永不为负：对未知主题的释放是空操作。
func (m *Multiplexer) release(postID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	remaining := false
	for _, kind := range topicKinds {
		key := topicKey{kind: kind, postID: postID}
		state, ok := m.topics[key]
		if !ok {
			continue
		}

		state.count--
		if state.count > 0 {
			remaining = true
			continue
		}

		state.cancelled.Store(true)
		if state.cancel != nil {
			state.cancel()
		}
		delete(m.topics, key)
	}

	if !remaining {
		m.rec.Forget(postID)
	}
}

func (m *Multiplexer) dispatch(kind topicKind, postID string, snap docstore.Snapshot) {
	switch kind {
	case topicPost:
		m.rec.ApplyPost(postID, snap.Value)
	case topicComments:
		m.rec.ApplyComments(postID, snap.Value)
	case topicReactions:
		m.rec.ApplyReactions(postID, snap.Value)
	}
}

func pathFor(kind topicKind, postID string) string {
	switch kind {
	case topicComments:
		return repository.CommentsPath(postID)
	case topicReactions:
		return repository.ReactionsPath(postID)
	default:
		return repository.PostPath(postID)
	}
}

// Session 单个消费端眼里的可见帖子集合
type Session struct {
	mux *Multiplexer

	mu      sync.Mutex
	tracked map[string]bool
	closed  bool
}

// Track 以全量可见集对账：新出现的帖子开订阅，消失的退订阅
func (s *Session) Track(ctx context.Context, postIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	next := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		if id == "" {
			continue
		}
		next[id] = true
	}

	for id := range next {
		if !s.tracked[id] {
			s.mux.retain(ctx, id)
		}
	}
	for id := range s.tracked {
		if !next[id] {
			s.mux.release(id)
		}
	}

	s.tracked = next
}

// Tracks 该会话当前是否追踪此帖子。已关闭的会话不追踪任何帖子。
func (s *Session) Tracks(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	return s.tracked[postID]
}

// Close 会话收尾，释放残余的全部引用。幂等。
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for id := range s.tracked {
		s.mux.release(id)
	}
	s.tracked = nil
}
