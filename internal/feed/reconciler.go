package feed

import (
	"Classfeed/internal/model"
	"Classfeed/internal/service"
	log "log/slog"
	"sync"

	"github.com/goccy/go-json"
)

// Aggregate 单帖的客户端可见聚合视图
type Aggregate struct {
	Post           *model.Post      `json:"post"`
	Comments       []*model.Comment `json:"comments"`
	ReactionCounts map[string]int64 `json:"reactionCounts"`
	Reactors       int              `json:"reactors"`
}

// Update 推给监听方的增量通知，携带整份聚合快照
type Update struct {
	PostID    string     `json:"postId"`
	Aggregate *Aggregate `json:"aggregate"`
}

// Listener 聚合更新的消费端。队列写满时丢弃，慢消费方不拖垮别人。
type Listener struct {
	C   chan Update
	rec *Reconciler
	id  int
}

func (l *Listener) Close() {
	l.rec.mu.Lock()
	delete(l.rec.listeners, l.id)
	l.rec.mu.Unlock()
}

// Reconciler 把各主题独立到达的全量快照合并成每帖一份的聚合。
// 不同主题之间没有顺序保证，每个主题只改自己那一块，
// 永远不假设其它主题是新的。
type Reconciler struct {
	mu         sync.Mutex
	aggregates map[string]*Aggregate
	listeners  map[int]*Listener
	seq        int
}

func NewReconciler() *Reconciler {
	return &Reconciler{
		aggregates: make(map[string]*Aggregate),
		listeners:  make(map[int]*Listener),
	}
}

// ApplyPost 帖子主题快照，nil 表示路径上已无值
func (r *Reconciler) ApplyPost(postID string, raw json.RawMessage) {
	var post *model.Post
	if raw != nil {
		post = &model.Post{}
		if err := json.Unmarshal(raw, post); err != nil {
			log.Warn("reconciler: bad post snapshot", "postID", postID, "err", err)
			return
		}
	}

	r.merge(postID, func(agg *Aggregate) {
		agg.Post = post
	})
}

// ApplyComments 评论主题快照，整张 map 全量替换
func (r *Reconciler) ApplyComments(postID string, raw json.RawMessage) {
	byID := make(map[string]*model.Comment)
	if raw != nil {
		if err := json.Unmarshal(raw, &byID); err != nil {
			log.Warn("reconciler: bad comments snapshot", "postID", postID, "err", err)
			return
		}
	}

	comments := make([]*model.Comment, 0, len(byID))
	for _, c := range byID {
		comments = append(comments, c)
	}
	service.SortCommentsNewestFirst(comments)

	r.merge(postID, func(agg *Aggregate) {
		agg.Comments = comments
	})
}

// ApplyReactions 表情主题快照，就地归并成计数
func (r *Reconciler) ApplyReactions(postID string, raw json.RawMessage) {
	byUser := make(map[string]*model.Reaction)
	if raw != nil {
		if err := json.Unmarshal(raw, &byUser); err != nil {
			log.Warn("reconciler: bad reactions snapshot", "postID", postID, "err", err)
			return
		}
	}

	counts := make(map[string]int64, len(model.ReactionTypes))
	for _, t := range model.ReactionTypes {
		counts[t] = 0
	}
	for _, reaction := range byUser {
		if _, ok := counts[reaction.Type]; ok {
			counts[reaction.Type]++
		}
	}

	r.merge(postID, func(agg *Aggregate) {
		agg.ReactionCounts = counts
		agg.Reactors = len(byUser)
	})
}

// Forget 该帖的订阅全部退掉后丢弃聚合
func (r *Reconciler) Forget(postID string) {
	r.mu.Lock()
	delete(r.aggregates, postID)
	r.mu.Unlock()
}

// Aggregate 当前聚合的副本
func (r *Reconciler) Aggregate(postID string) (*Aggregate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	agg, ok := r.aggregates[postID]
	if !ok {
		return nil, false
	}
	return cloneAggregate(agg), true
}

// Listen 注册一个聚合更新监听
func (r *Reconciler) Listen() *Listener {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := &Listener{
		C:   make(chan Update, 16),
		rec: r,
		id:  r.seq,
	}
	r.seq++
	r.listeners[l.id] = l
	return l
}

func (r *Reconciler) merge(postID string, apply func(*Aggregate)) {
	r.mu.Lock()

	agg, ok := r.aggregates[postID]
	if !ok {
		agg = &Aggregate{}
		r.aggregates[postID] = agg
	}
	apply(agg)

	snapshot := cloneAggregate(agg)
	pending := make([]*Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		pending = append(pending, l)
	}
	r.mu.Unlock()

	update := Update{PostID: postID, Aggregate: snapshot}
	for _, l := range pending {
		select {
		case l.C <- update:
		default:
			// 队列满则丢弃
		}
	}
}

func cloneAggregate(agg *Aggregate) *Aggregate {
	copied := &Aggregate{
		Post:     agg.Post,
		Reactors: agg.Reactors,
	}
	if agg.Comments != nil {
		copied.Comments = append([]*model.Comment(nil), agg.Comments...)
	}
	if agg.ReactionCounts != nil {
		copied.ReactionCounts = make(map[string]int64, len(agg.ReactionCounts))
		for k, v := range agg.ReactionCounts {
			copied.ReactionCounts[k] = v
		}
	}
	return copied
}
