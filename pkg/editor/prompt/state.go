package prompt

import (
	"strings"

	"github.com/goliatone/go-deposit/pkg/record"
)

// getPath resolves a dotted path into nested objects.
func getPath(root map[string]any, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	var current any = root
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = node[segment]; !ok {
			return nil, false
		}
	}
	return current, true
}

// setPath writes value at a dotted path, replacing non-object intermediates
// with fresh objects.
func setPath(root map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	node := root
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
}

// deletePath removes the value at a dotted path if present.
func deletePath(root map[string]any, path string) {
	segments := strings.Split(path, ".")
	node := root
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			return
		}
		node = child
	}
	delete(node, segments[len(segments)-1])
}

// pruneUndeclared drops keys whose dotted path the schema does not declare.
func pruneUndeclared(node map[string]any, prefix string, declared map[string]bool) {
	for key, value := range node {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if !declared[path] {
			delete(node, key)
			continue
		}
		if child, ok := value.(map[string]any); ok && declaresChildren(declared, path) {
			pruneUndeclared(child, path, declared)
		}
	}
}

func declaresChildren(declared map[string]bool, path string) bool {
	prefix := path + "."
	for candidate := range declared {
		if strings.HasPrefix(candidate, prefix) {
			return true
		}
	}
	return false
}

// removeEmpty drops empty strings, nulls, empty lists and objects left empty
// after pruning.
func removeEmpty(node map[string]any) {
	for key, value := range node {
		switch typed := value.(type) {
		case nil:
			delete(node, key)
		case string:
			if typed == "" {
				delete(node, key)
			}
		case []any:
			if len(typed) == 0 {
				delete(node, key)
			}
		case map[string]any:
			removeEmpty(typed)
			if len(typed) == 0 {
				delete(node, key)
			}
		}
	}
}

func copyObject(value map[string]any) map[string]any {
	if value == nil {
		return make(map[string]any)
	}
	return record.Record(value).Map()
}
