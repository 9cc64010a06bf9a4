// Package binding 把 JSON 数据绑定到段落文本中的 ${path} 占位符。
package binding

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{\s*([^}]*?)\s*\}`)

// Interpolate 将文本中的 ${path.to.value} 或 ${items[0].name} 替换为 data 中的值。
// data 为空、路径不存在或指向对象/数组时保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 || groups[1] == "" {
			return match
		}
		val, ok := Lookup(data, groups[1])
		if !ok {
			return match
		}
		s, ok := format(val)
		if !ok {
			return match
		}
		return s
	})
}

// Lookup 按路径在 data 中查找值，支持 map[string]any 与 []any 的任意嵌套。
func Lookup(data any, path string) (any, bool) {
	steps, err := splitPath(path)
	if err != nil {
		return nil, false
	}
	current := data
	for _, st := range steps {
		switch c := current.(type) {
		case map[string]any:
			if st.index >= 0 {
				return nil, false
			}
			v, ok := c[st.key]
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			if st.index < 0 || st.index >= len(c) {
				return nil, false
			}
			current = c[st.index]
		default:
			return nil, false
		}
	}
	return current, true
}

// step 是路径中的一段：键名或数组下标（index >= 0）。
type step struct {
	key   string
	index int
}

func splitPath(path string) ([]step, error) {
	var steps []step
	for _, segment := range strings.Split(path, ".") {
		segment = strings.TrimSpace(segment)
		name := segment
		rest := ""
		if i := strings.IndexByte(segment, '['); i >= 0 {
			name, rest = segment[:i], segment[i:]
		}
		if name != "" {
			steps = append(steps, step{key: name, index: -1})
		}
		for rest != "" {
			end := strings.IndexByte(rest, ']')
			if rest[0] != '[' || end < 0 {
				return nil, fmt.Errorf("路径 %q 中的下标不完整", path)
			}
			idx, err := strconv.Atoi(strings.TrimSpace(rest[1:end]))
			if err != nil {
				return nil, fmt.Errorf("路径 %q 中的下标无效: %w", path, err)
			}
			steps = append(steps, step{index: idx})
			rest = rest[end+1:]
		}
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("路径为空")
	}
	return steps, nil
}

func format(val any) (string, bool) {
	switch v := val.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case map[string]any, []any:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}
