package docstore

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryStore 进程内实现，测试与本地开发用。
// 快照在写操作的调用栈里同步送达，便于写确定性的测试。
type memoryStore struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage
	subs map[int]*memorySub
	seq  int
}

type memorySub struct {
	path      string
	fn        func(Snapshot)
	cancelled atomic.Bool
}

// NewMemoryStore 进程内文档存储
func NewMemoryStore() Store {
	return &memoryStore{
		docs: make(map[string]json.RawMessage),
		subs: make(map[int]*memorySub),
	}
}

func (s *memoryStore) Subscribe(ctx context.Context, path string, fn func(Snapshot)) (CancelFunc, error) {
	sub := &memorySub{path: path, fn: fn}

	s.mu.Lock()
	id := s.seq
	s.seq++
	s.subs[id] = sub
	raw, _ := composeValue(path, s.docs)
	s.mu.Unlock()

	sub.deliver(Snapshot{Path: path, Value: raw})

	cancel := func() {
		if sub.cancelled.CompareAndSwap(false, true) {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		}
	}
	return cancel, nil
}

func (s *memoryStore) ReadOnce(ctx context.Context, path string, out any) error {
	s.mu.Lock()
	raw, err := composeValue(path, s.docs)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (s *memoryStore) Write(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.docs[path] = raw
	s.mu.Unlock()

	s.broadcast(path)
	return nil
}

// Update 读改写全程持锁
func (s *memoryStore) Update(ctx context.Context, path string, fields map[string]any) error {
	s.mu.Lock()
	raw, ok := s.docs[path]
	if !ok {
		s.mu.Unlock()
		return ErrNoValue
	}

	record := make(map[string]any)
	if err := json.Unmarshal(raw, &record); err != nil {
		s.mu.Unlock()
		return err
	}
	for k, v := range fields {
		record[k] = v
	}

	merged, err := json.Marshal(record)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.docs[path] = merged
	s.mu.Unlock()

	s.broadcast(path)
	return nil
}

func (s *memoryStore) Remove(ctx context.Context, path string) error {
	prefix := path + "/"

	s.mu.Lock()
	delete(s.docs, path)
	for p := range s.docs {
		if strings.HasPrefix(p, prefix) {
			delete(s.docs, p)
		}
	}
	s.mu.Unlock()

	s.broadcast(path)
	return nil
}

func (s *memoryStore) Push(ctx context.Context, path string) (string, error) {
	return primitive.NewObjectID().Hex(), nil
}

// broadcast 把变更路径命中的所有订阅重新投递一次全量快照
func (s *memoryStore) broadcast(path string) {
	type delivery struct {
		sub  *memorySub
		snap Snapshot
	}

	s.mu.Lock()
	var pending []delivery
	for _, sub := range s.subs {
		if sub.path != path && !strings.HasPrefix(path, sub.path+"/") {
			continue
		}
		raw, _ := composeValue(sub.path, s.docs)
		pending = append(pending, delivery{sub: sub, snap: Snapshot{Path: sub.path, Value: raw}})
	}
	s.mu.Unlock()

	// 锁外投递，回调里允许再次访问存储
	for _, d := range pending {
		d.sub.deliver(d.snap)
	}
}

func (s *memorySub) deliver(snap Snapshot) {
	if s.cancelled.Load() {
		return
	}
	s.fn(snap)
}
