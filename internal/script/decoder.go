// Package script decodes JSON operation scripts used to drive trackers in
// fixture tests and examples.
package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Context identifies the document being decoded in error messages.
type Context struct {
	Source string
	Name   string
}

func (c Context) label() string {
	switch {
	case c.Source != "" && c.Name != "":
		return c.Source + "#" + c.Name
	case c.Source != "":
		return c.Source
	case c.Name != "":
		return c.Name
	default:
		return "<inline>"
	}
}

// PreHook rewrites the raw document before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook validates or adjusts the decoded value.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder.
type DecoderOption[T any] func(*Decoder[T])

// Decoder turns JSON documents into typed scripts.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
}

// WithPreHook runs hook on the raw document before decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook runs hook on the decoded value.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDisallowUnknownFields rejects documents with fields T does not declare.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

// WithUseNumber decodes numbers held in interface fields as json.Number.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.UseNumber()
		})
	}
}

// NewDecoder constructs a Decoder.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts document into T. document is not modified.
func (d *Decoder[T]) Decode(ctx Context, document map[string]any) (T, error) {
	var zero T
	if document == nil {
		return zero, fmt.Errorf("script: %s: document is nil", ctx.label())
	}

	current, err := cloneDocument(document)
	if err != nil {
		return zero, fmt.Errorf("script: %s: clone document: %w", ctx.label(), err)
	}
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("script: %s: pre-hook: %w", ctx.label(), err)
		}
		if next != nil {
			current = next
		}
	}

	buffer, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("script: %s: marshal document: %w", ctx.label(), err)
	}
	result, err := d.decodeBytes(buffer)
	if err != nil {
		return zero, fmt.Errorf("script: %s: decode: %w", ctx.label(), err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("script: %s: post-hook: %w", ctx.label(), err)
		}
	}
	return result, nil
}

// DecodeFile reads path and decodes every entry of its top level array.
func (d *Decoder[T]) DecodeFile(path string) ([]T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: read %s: %w", path, err)
	}
	var documents []map[string]any
	if err := json.Unmarshal(raw, &documents); err != nil {
		return nil, fmt.Errorf("script: parse %s: %w", path, err)
	}
	source := filepath.Base(path)
	out := make([]T, 0, len(documents))
	for i, document := range documents {
		name, _ := document["name"].(string)
		if name == "" {
			name = fmt.Sprintf("[%d]", i)
		}
		value, err := d.Decode(Context{Source: source, Name: name}, document)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

func (d *Decoder[T]) decodeBytes(buffer []byte) (T, error) {
	var result T
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	for _, configure := range d.configureDec {
		if configure != nil {
			configure(decoder)
		}
	}
	err := decoder.Decode(&result)
	return result, err
}

func cloneDocument(document map[string]any) (map[string]any, error) {
	buffer, err := json.Marshal(document)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(buffer, &out); err != nil {
		return nil, err
	}
	return out, nil
}
