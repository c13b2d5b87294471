package prompt

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-deposit/pkg/schema"
)

// Kind is the prompt style of a field.
type Kind string

const (
	KindString   Kind = "string"
	KindPassword Kind = "password"
	KindText     Kind = "textarea"
	KindEnum     Kind = "enum"
	KindInteger  Kind = "integer"
	KindNumber   Kind = "number"
	KindBoolean  Kind = "boolean"
	KindStrings  Kind = "strings"
	KindChoices  Kind = "choices"
)

// Field is one prompt derived from a schema property.
type Field struct {
	// Path is the dotted location of the value, e.g. "author.name".
	Path string
	// Name is the form name, e.g. "deposit[author][name]".
	Name        string
	Title       string
	Description string
	Kind        Kind
	Required    bool
	Default     any
	// Enum holds the allowed values for KindEnum and KindChoices.
	Enum []any
}

// builder turns a schema document into fields. Remote documents are loaded
// at most once per builder.
type builder struct {
	ctx    context.Context
	loader schema.Loader
	remote bool
	root   string
	docs   map[string]map[string]any
}

type scope struct {
	source schema.Source
	doc    map[string]any
}

func (b *builder) build(doc schema.Document) ([]Field, []string, error) {
	decoded, err := doc.Decode()
	if err != nil {
		return nil, nil, err
	}
	b.docs[doc.Location()] = decoded
	root := scope{source: doc.Source(), doc: decoded}

	node, current, refs, err := b.resolve(root, decoded, 0)
	if err != nil {
		return nil, nil, err
	}
	if typeOf(node) != "object" {
		return nil, nil, fmt.Errorf("%w: schema %q has type %q", ErrNotObject, doc.Location(), typeOf(node))
	}
	var (
		fields []Field
		paths  []string
	)
	active := map[string]bool{refKey(doc.Source(), ""): true}
	for _, key := range refs {
		active[key] = true
	}
	err = b.walkObject(current, node, nil, active, &fields, &paths)
	return fields, paths, err
}

// walkObject collects the fields of node. active holds the $ref targets
// enclosing the current path; an object reaching one of them again is kept
// as a path but not expanded.
func (b *builder) walkObject(sc scope, node map[string]any, prefix []string, active map[string]bool, fields *[]Field, paths *[]string) error {
	properties, _ := node["properties"].(map[string]any)
	required := stringSet(node["required"])

	for _, key := range orderedKeys(properties) {
		raw, ok := properties[key].(map[string]any)
		if !ok {
			continue
		}
		prop, propScope, refs, err := b.resolve(sc, raw, 0)
		if err != nil {
			return fmt.Errorf("prompt: property %q: %w", strings.Join(append(prefix, key), "."), err)
		}
		segments := append(append([]string(nil), prefix...), key)
		*paths = append(*paths, strings.Join(segments, "."))

		if typeOf(prop) == "object" {
			if recursive(active, refs) {
				continue
			}
			for _, ref := range refs {
				active[ref] = true
			}
			err := b.walkObject(propScope, prop, segments, active, fields, paths)
			for _, ref := range refs {
				delete(active, ref)
			}
			if err != nil {
				return err
			}
			continue
		}
		kind, enum, ok := kindOf(prop)
		if !ok {
			continue
		}
		title, _ := prop["title"].(string)
		if strings.TrimSpace(title) == "" {
			title = key
		}
		description, _ := prop["description"].(string)
		*fields = append(*fields, Field{
			Path:        strings.Join(segments, "."),
			Name:        formName(b.root, segments),
			Title:       title,
			Description: description,
			Kind:        kind,
			Required:    required[key],
			Default:     prop["default"],
			Enum:        enum,
		})
	}
	return nil
}

const maxRefDepth = 32

// resolve follows $ref chains. Local refs point into the current document;
// anything before the "#" names another document. refs lists the targets
// visited on the way.
func (b *builder) resolve(sc scope, node map[string]any, depth int) (map[string]any, scope, []string, error) {
	ref, ok := node["$ref"].(string)
	if !ok || ref == "" {
		return node, sc, nil, nil
	}
	if depth >= maxRefDepth {
		return nil, sc, nil, fmt.Errorf("prompt: $ref %q nests too deeply", ref)
	}

	location, pointer, _ := strings.Cut(ref, "#")
	target := sc
	if location != "" {
		loaded, err := b.load(sc.source, location)
		if err != nil {
			return nil, sc, nil, err
		}
		target = loaded
	}
	resolved, err := lookupPointer(target.doc, pointer)
	if err != nil {
		return nil, sc, nil, fmt.Errorf("prompt: $ref %q: %w", ref, err)
	}
	out, outScope, refs, err := b.resolve(target, resolved, depth+1)
	if err != nil {
		return nil, sc, nil, err
	}
	return out, outScope, append([]string{refKey(target.source, pointer)}, refs...), nil
}

func refKey(src schema.Source, pointer string) string {
	location := ""
	if src != nil {
		location = src.Location()
	}
	return location + "#/" + strings.TrimPrefix(pointer, "/")
}

func recursive(active map[string]bool, refs []string) bool {
	for _, ref := range refs {
		if active[ref] {
			return true
		}
	}
	return false
}

func (b *builder) load(base schema.Source, location string) (scope, error) {
	if !b.remote || b.loader == nil {
		return scope{}, fmt.Errorf("%w: %s", ErrRemoteRef, location)
	}
	src, err := schema.Resolve(base, location)
	if err != nil {
		return scope{}, err
	}
	if doc, ok := b.docs[src.Location()]; ok {
		return scope{source: src, doc: doc}, nil
	}
	loaded, err := b.loader.Load(b.ctx, src)
	if err != nil {
		return scope{}, fmt.Errorf("prompt: load $ref %q: %w", src.Location(), err)
	}
	decoded, err := loaded.Decode()
	if err != nil {
		return scope{}, err
	}
	b.docs[src.Location()] = decoded
	return scope{source: src, doc: decoded}, nil
}

// lookupPointer resolves a JSON pointer such as "/definitions/author".
func lookupPointer(doc map[string]any, pointer string) (map[string]any, error) {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return doc, nil
	}
	var current any = doc
	for _, token := range strings.Split(pointer, "/") {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		node, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("pointer segment %q is not an object", token)
		}
		current, ok = node[token]
		if !ok {
			return nil, fmt.Errorf("pointer segment %q not found", token)
		}
	}
	out, ok := current.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("pointer target is not a schema object")
	}
	return out, nil
}

func kindOf(prop map[string]any) (Kind, []any, bool) {
	if enum, ok := prop["enum"].([]any); ok && len(enum) > 0 {
		return KindEnum, enum, true
	}
	switch typeOf(prop) {
	case "string":
		switch prop["format"] {
		case "password":
			return KindPassword, nil, true
		case "textarea":
			return KindText, nil, true
		}
		return KindString, nil, true
	case "integer":
		return KindInteger, nil, true
	case "number":
		return KindNumber, nil, true
	case "boolean":
		return KindBoolean, nil, true
	case "array":
		items, _ := prop["items"].(map[string]any)
		if enum, ok := items["enum"].([]any); ok && len(enum) > 0 {
			return KindChoices, enum, true
		}
		if typeOf(items) == "string" {
			return KindStrings, nil, true
		}
	}
	return "", nil, false
}

// typeOf returns the schema type, taking the first non-null entry of a type
// list and treating schemas with properties as objects.
func typeOf(node map[string]any) string {
	switch typed := node["type"].(type) {
	case string:
		return typed
	case []any:
		for _, entry := range typed {
			if name, ok := entry.(string); ok && name != "null" {
				return name
			}
		}
	}
	if _, ok := node["properties"]; ok {
		return "object"
	}
	return ""
}

// orderedKeys sorts by propertyOrder, then by name.
func orderedKeys(properties map[string]any) []string {
	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}
	order := func(key string) float64 {
		if prop, ok := properties[key].(map[string]any); ok {
			if value, ok := prop["propertyOrder"].(float64); ok {
				return value
			}
		}
		return 1000
	}
	sort.SliceStable(keys, func(i, j int) bool {
		oi, oj := order(keys[i]), order(keys[j])
		if oi != oj {
			return oi < oj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func stringSet(value any) map[string]bool {
	list, _ := value.([]any)
	out := make(map[string]bool, len(list))
	for _, entry := range list {
		if name, ok := entry.(string); ok {
			out[name] = true
		}
	}
	return out
}

func formName(root string, segments []string) string {
	if root == "" {
		root = "root"
	}
	var b strings.Builder
	b.WriteString(root)
	for _, segment := range segments {
		b.WriteString("[")
		b.WriteString(segment)
		b.WriteString("]")
	}
	return b.String()
}
