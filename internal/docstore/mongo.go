package docstore

import (
	"Classfeed/internal/pkg/consts"
	"Classfeed/internal/pkg/redis"
	"context"
	"errors"
	log "log/slog"
	"regexp"
	"sync/atomic"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoStore 每个叶子路径对应一条 Mongo 文档，
// 变更通知经 Redis 频道广播，订阅方收到后重读全量值。
// 这与 IM 的"存 Mongo、推 Redis"是同一套路。
type mongoStore struct {
	col *mongo.Collection
}

// 叶子值以 BSON 子文档存储
type pathDoc struct {
	ID     string `bson:"_id"`
	Parent string `bson:"parent"`
	Value  any    `bson:"value"`
}

// NewMongoStore 基于 Mongo + Redis 的文档存储实现
func NewMongoStore(db *mongo.Database) (Store, error) {
	col := db.Collection("documents")

	_, err := col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "parent", Value: 1}},
	})
	if err != nil {
		return nil, Transient(err)
	}

	return &mongoStore{col: col}, nil
}

func (s *mongoStore) Subscribe(ctx context.Context, path string, fn func(Snapshot)) (CancelFunc, error) {
	pubsub := redis.Subscribe(context.Background(), consts.DocChannelPrefix+path)

	var cancelled atomic.Bool

	deliver := func() {
		raw, err := s.readValue(context.Background(), path)
		if err != nil && !errors.Is(err, ErrNoValue) {
			log.Warn("docstore snapshot read failed", "path", path, "err", err)
			return
		}
		// 取消后到达的回调直接丢弃
		if cancelled.Load() {
			return
		}
		fn(Snapshot{Path: path, Value: raw})
	}

	// 单个 goroutine 顺序消费，保证同一路径上的推送有序
	go func() {
		deliver()
		for range pubsub.Channel() {
			deliver()
		}
	}()

	cancel := func() {
		if cancelled.CompareAndSwap(false, true) {
			_ = pubsub.Close()
		}
	}

	return cancel, nil
}

func (s *mongoStore) ReadOnce(ctx context.Context, path string, out any) error {
	raw, err := s.readValue(ctx, path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (s *mongoStore) Write(ctx context.Context, path string, value any) error {
	stored, err := toStored(value)
	if err != nil {
		return err
	}

	_, err = s.col.UpdateOne(ctx,
		bson.M{"_id": path},
		bson.M{"$set": bson.M{"parent": Parent(path), "value": stored}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return Transient(err)
	}

	s.notify(ctx, path)
	return nil
}

// Update 逐字段落成 value.<k> 点路径的单文档原子 $set
func (s *mongoStore) Update(ctx context.Context, path string, fields map[string]any) error {
	set := bson.M{}
	for k, v := range fields {
		stored, err := toStored(v)
		if err != nil {
			return err
		}
		set["value."+k] = stored
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": path}, bson.M{"$set": set})
	if err != nil {
		return Transient(err)
	}
	if res.MatchedCount == 0 {
		return ErrNoValue
	}

	s.notify(ctx, path)
	return nil
}

func (s *mongoStore) Remove(ctx context.Context, path string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": path})
	if err != nil {
		return Transient(err)
	}

	_, err = s.col.DeleteMany(ctx, bson.M{"_id": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(path+"/")}})
	if err != nil {
		return Transient(err)
	}

	s.notify(ctx, path)
	return nil
}

func (s *mongoStore) Push(ctx context.Context, path string) (string, error) {
	return primitive.NewObjectID().Hex(), nil
}

// readValue 读取路径的全量值：叶子命中直接返回，否则组装子树
func (s *mongoStore) readValue(ctx context.Context, path string) (json.RawMessage, error) {
	var doc pathDoc
	err := s.col.FindOne(ctx, bson.M{"_id": path}).Decode(&doc)
	if err == nil {
		return json.Marshal(fromStored(doc.Value))
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, Transient(err)
	}

	cursor, err := s.col.Find(ctx, bson.M{"_id": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(path+"/")}})
	if err != nil {
		return nil, Transient(err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var children []pathDoc
	if err := cursor.All(ctx, &children); err != nil {
		return nil, Transient(err)
	}
	if len(children) == 0 {
		return nil, ErrNoValue
	}

	docs := make(map[string]json.RawMessage, len(children))
	for _, c := range children {
		raw, err := json.Marshal(fromStored(c.Value))
		if err != nil {
			return nil, err
		}
		docs[c.ID] = raw
	}
	return composeValue(path, docs)
}

// toStored 经 JSON 规整成 map/slice/标量，按 json tag 的形状落库
func toStored(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var stored any
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// fromStored 把 BSON 解码出的 primitive.D/M/A 还原为普通 map/slice
func fromStored(v any) any {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = fromStored(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = fromStored(val)
		}
		return m
	case primitive.A:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = fromStored(val)
		}
		return out
	default:
		return v
	}
}

// notify 逐级向上广播变更路径，让订阅了任一祖先路径的一方重读
func (s *mongoStore) notify(ctx context.Context, path string) {
	for p := path; p != ""; p = Parent(p) {
		if err := redis.Publish(ctx, consts.DocChannelPrefix+p, path); err != nil {
			log.Warn("docstore notify failed", "path", p, "err", err)
		}
	}
}
