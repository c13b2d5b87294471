package schema

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Source identifies where a schema document originated so loaders can operate
// on files, fs.FS entries, or URLs without leaking implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() SourceKind { return SourceKindFile }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() SourceKind { return SourceKindFS }

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }
func (s urlSource) Kind() SourceKind { return SourceKindURL }

// SourceFromURL parses the supplied URL string and returns a Source. It panics
// if the URL is invalid to surface configuration mistakes early.
func SourceFromURL(raw string) Source {
	src, err := parseURLSource(raw)
	if err != nil {
		panic(err.Error())
	}
	return src
}

// ParseSource maps a reference taken from markup or configuration onto a
// Source. Absolute http(s) URLs and relative references ("/schemas/x.json",
// "schemas/x.json") are URL sources; loaders resolve relative ones against
// their base URL. "file://" and "fs://" prefixes select the other kinds.
func ParseSource(raw string) (Source, error) {
	ref := strings.TrimSpace(raw)
	switch {
	case ref == "":
		return nil, fmt.Errorf("schema: empty source")
	case strings.HasPrefix(ref, "file://"):
		return SourceFromFile(strings.TrimPrefix(ref, "file://")), nil
	case strings.HasPrefix(ref, "fs://"):
		return SourceFromFS(strings.TrimPrefix(ref, "fs://")), nil
	default:
		return parseURLSource(ref)
	}
}

func parseURLSource(raw string) (Source, error) {
	if raw == "" {
		return nil, fmt.Errorf("schema: empty URL source")
	}
	if _, err := url.Parse(raw); err != nil {
		return nil, fmt.Errorf("schema: invalid URL %q: %v", raw, err)
	}
	return urlSource{raw: raw}, nil
}

// Resolve maps ref, a $ref document location, onto a Source relative to base.
// Refs with their own scheme or prefix are parsed as is.
func Resolve(base Source, ref string) (Source, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("schema: empty reference")
	}
	if base == nil || strings.HasPrefix(ref, "file://") || strings.HasPrefix(ref, "fs://") {
		return ParseSource(ref)
	}
	if parsed, err := url.Parse(ref); err == nil && parsed.Scheme != "" {
		return ParseSource(ref)
	}

	switch base.Kind() {
	case SourceKindFile:
		if filepath.IsAbs(ref) {
			return SourceFromFile(ref), nil
		}
		return SourceFromFile(filepath.Join(filepath.Dir(base.Location()), ref)), nil
	case SourceKindFS:
		return SourceFromFS(path.Join(path.Dir(base.Location()), ref)), nil
	default:
		baseURL, err := url.Parse(base.Location())
		if err != nil {
			return nil, fmt.Errorf("schema: invalid base %q: %w", base.Location(), err)
		}
		target, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("schema: invalid reference %q: %w", ref, err)
		}
		return parseURLSource(baseURL.ResolveReference(target).String())
	}
}
