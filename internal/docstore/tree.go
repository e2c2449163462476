package docstore

import (
	"strings"

	"github.com/goccy/go-json"
)

// composeValue 把叶子记录组装成 path 处的全量值。
// docs 的键是完整路径；命中叶子时直接返回，否则按剩余路径段拼成嵌套对象。
func composeValue(path string, docs map[string]json.RawMessage) (json.RawMessage, error) {
	if raw, ok := docs[path]; ok {
		return raw, nil
	}

	prefix := path + "/"
	tree := make(map[string]any)
	found := false

	for p, raw := range docs {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		found = true

		segments := strings.Split(p[len(prefix):], "/")
		node := tree
		for _, seg := range segments[:len(segments)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[seg] = child
			}
			node = child
		}
		node[segments[len(segments)-1]] = raw
	}

	if !found {
		return nil, ErrNoValue
	}

	return json.Marshal(tree)
}
