package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-deposit/pkg/editor"
	"github.com/goliatone/go-deposit/pkg/logging"
	"github.com/goliatone/go-deposit/pkg/record"
	"github.com/goliatone/go-deposit/pkg/schema"
)

// Theme token keys read from editor.Options.Theme.Tokens.
const (
	TokenPromptPrefix = "prompt-prefix"
	TokenHeader       = "header"
)

// Option configures the Factory.
type Option func(*Factory)

// WithDriver overrides the survey driver.
func WithDriver(driver Driver) Option {
	return func(f *Factory) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithLoader enables remote $ref resolution when editor options ask for it.
func WithLoader(loader schema.Loader) Option {
	return func(f *Factory) {
		f.loader = loader
	}
}

// WithLogger attaches a logger.
func WithLogger(logger logging.Logger) Option {
	return func(f *Factory) {
		f.logger = logging.OrNop(logger)
	}
}

// Factory builds prompt editors.
type Factory struct {
	driver Driver
	loader schema.Loader
	logger logging.Logger
}

var _ editor.Factory = (*Factory)(nil)

// NewFactory returns a factory using the survey driver unless overridden.
func NewFactory(options ...Option) *Factory {
	f := &Factory{driver: SurveyDriver(), logger: logging.Nop()}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// New resolves the schema into fields. The editor is ready when New returns.
func (f *Factory) New(ctx context.Context, mount any, doc schema.Document, opts editor.Options) (editor.Editor, error) {
	b := &builder{
		ctx:    ctx,
		loader: f.loader,
		remote: opts.AjaxRefs,
		root:   opts.FormNameRoot,
		docs:   make(map[string]map[string]any),
	}
	fields, paths, err := b.build(doc)
	if err != nil {
		return nil, err
	}
	declared := make(map[string]bool, len(paths))
	for _, path := range paths {
		declared[path] = true
	}

	ed := &Editor{
		driver:   f.driver,
		logger:   f.logger.With("form", opts.FormNameRoot),
		mount:    mount,
		opts:     opts.Clone(),
		fields:   fields,
		declared: declared,
		value:    make(map[string]any),
	}
	ed.logger.Debug("prompt editor built", "schema", doc.Location(), "fields", len(fields))
	ed.MarkReady()
	return ed, nil
}

// Editor collects a record through terminal prompts.
type Editor struct {
	editor.Events

	driver   Driver
	logger   logging.Logger
	mount    any
	opts     editor.Options
	fields   []Field
	declared map[string]bool

	mu    sync.Mutex
	value map[string]any
}

var _ editor.Editor = (*Editor)(nil)

// Fields returns the prompts in the order Edit asks them.
func (e *Editor) Fields() []Field {
	return append([]Field(nil), e.fields...)
}

// Mount returns the target the editor was built for.
func (e *Editor) Mount() any { return e.mount }

// Value returns a copy of the current value.
func (e *Editor) Value() any {
	e.mu.Lock()
	out := copyObject(e.value)
	e.mu.Unlock()
	if e.opts.RemoveEmptyProperties {
		removeEmpty(out)
	}
	return out
}

// SetValue replaces the value. Only objects are accepted.
func (e *Editor) SetValue(value any) error {
	rec, ok := record.FromValue(value)
	if !ok {
		return fmt.Errorf("%w: got %T", ErrNotObject, value)
	}
	next := rec.Map()
	if e.opts.NoAdditionalProperties {
		pruneUndeclared(next, "", e.declared)
	}
	e.mu.Lock()
	e.value = next
	e.mu.Unlock()
	return nil
}

// Edit asks for every field in order. Each answer updates the value and emits
// change. An aborted prompt stops the walk and returns ErrAborted.
func (e *Editor) Edit(ctx context.Context) error {
	if header := e.opts.Theme.Tokens[TokenHeader]; header != "" {
		if err := e.driver.Info(ctx, header); err != nil {
			return err
		}
	}
	for _, field := range e.fields {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.mu.Lock()
		current, ok := getPath(e.value, field.Path)
		e.mu.Unlock()
		if !ok {
			current = field.Default
		}

		answer, set, err := e.ask(ctx, field, current)
		if err != nil {
			return err
		}
		e.mu.Lock()
		if set {
			setPath(e.value, field.Path, answer)
		} else {
			deletePath(e.value, field.Path)
		}
		e.mu.Unlock()
		e.EmitChange()
	}
	return nil
}

func (e *Editor) message(field Field) string {
	msg := field.Title
	if field.Required {
		msg += " *"
	}
	if prefix := e.opts.Theme.Tokens[TokenPromptPrefix]; prefix != "" {
		msg = prefix + " " + msg
	}
	return msg
}

func (e *Editor) help(field Field) string {
	if field.Description != "" {
		return field.Description
	}
	return field.Name
}

// ask prompts for one field. set is false when the answer clears the value.
func (e *Editor) ask(ctx context.Context, field Field, current any) (any, bool, error) {
	msg, help := e.message(field), e.help(field)

	switch field.Kind {
	case KindEnum:
		options := make([]string, len(field.Enum))
		defaultIndex := 0
		for i, option := range field.Enum {
			options[i] = fmt.Sprint(option)
			if current != nil && fmt.Sprint(current) == options[i] {
				defaultIndex = i
			}
		}
		idx, err := e.driver.Select(ctx, SelectConfig{Message: msg, Help: help, Options: options, DefaultIndex: defaultIndex})
		if err != nil {
			return nil, false, err
		}
		if idx < 0 || idx >= len(field.Enum) {
			return nil, false, fmt.Errorf("prompt: %s: selection %d out of range", field.Path, idx)
		}
		return field.Enum[idx], true, nil

	case KindChoices:
		options := make([]string, len(field.Enum))
		selected := toSet(current)
		var defaults []int
		for i, option := range field.Enum {
			options[i] = fmt.Sprint(option)
			if selected[options[i]] {
				defaults = append(defaults, i)
			}
		}
		indices, err := e.driver.MultiSelect(ctx, SelectConfig{Message: msg, Help: help, Options: options, Defaults: defaults})
		if err != nil {
			return nil, false, err
		}
		out := make([]any, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(field.Enum) {
				out = append(out, field.Enum[idx])
			}
		}
		return out, true, nil

	case KindBoolean:
		def, _ := current.(bool)
		answer, err := e.driver.Confirm(ctx, ConfirmConfig{Message: msg, Help: help, Default: def})
		return answer, err == nil, err

	case KindText:
		answer, err := e.driver.TextArea(ctx, TextAreaConfig{Message: msg, Help: help, Default: stringOf(current)})
		return answer, err == nil, err

	case KindPassword:
		answer, err := e.driver.Password(ctx, InputConfig{Message: msg, Help: help, Validator: requiredValidator(field)})
		if err != nil {
			return nil, false, err
		}
		if answer == "" {
			// An empty password answer keeps the stored one.
			return current, current != nil, nil
		}
		return answer, true, nil

	case KindStrings:
		answer, err := e.driver.Input(ctx, InputConfig{Message: msg, Help: help + " (comma separated)", Default: joinStrings(current), Validator: requiredValidator(field)})
		if err != nil {
			return nil, false, err
		}
		return splitStrings(answer), true, nil

	case KindInteger, KindNumber:
		answer, err := e.driver.Input(ctx, InputConfig{Message: msg, Help: help, Default: stringOf(current), Validator: numberValidator(field)})
		if err != nil {
			return nil, false, err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return nil, false, nil
		}
		value, err := parseNumber(field.Kind, answer)
		if err != nil {
			return nil, false, fmt.Errorf("prompt: %s: %w", field.Path, err)
		}
		return value, true, nil

	default:
		answer, err := e.driver.Input(ctx, InputConfig{Message: msg, Help: help, Default: stringOf(current), Validator: requiredValidator(field)})
		return answer, err == nil, err
	}
}

func requiredValidator(field Field) func(string) error {
	if !field.Required {
		return nil
	}
	return func(answer string) error {
		if strings.TrimSpace(answer) == "" {
			return errors.New("value is required")
		}
		return nil
	}
}

func numberValidator(field Field) func(string) error {
	return func(answer string) error {
		answer = strings.TrimSpace(answer)
		if answer == "" {
			if field.Required {
				return errors.New("value is required")
			}
			return nil
		}
		_, err := parseNumber(field.Kind, answer)
		return err
	}
}

func parseNumber(kind Kind, answer string) (any, error) {
	if kind == KindInteger {
		n, err := strconv.ParseInt(answer, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", answer)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", answer)
	}
	return f, nil
}

func stringOf(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}

func joinStrings(value any) string {
	list, _ := value.([]any)
	parts := make([]string, 0, len(list))
	for _, entry := range list {
		parts = append(parts, stringOf(entry))
	}
	return strings.Join(parts, ", ")
}

func splitStrings(answer string) []any {
	out := []any{}
	for _, part := range strings.Split(answer, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func toSet(value any) map[string]bool {
	list, _ := value.([]any)
	out := make(map[string]bool, len(list))
	for _, entry := range list {
		out[fmt.Sprint(entry)] = true
	}
	return out
}
