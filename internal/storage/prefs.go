package storage

import (
	"context"
	"errors"
	"strings"
)

// DefaultPrefsNamespace prefixes every preference key.
const DefaultPrefsNamespace = "prefs/"

// Values stored for boolean preferences.
const (
	prefTrue  = "1"
	prefFalse = "0"
)

// Prefs is a small string/boolean preferences store over a KVEngine.
type Prefs struct {
	engine    KVEngine
	namespace string
}

// NewPrefs creates a preferences store. An empty namespace uses
// DefaultPrefsNamespace.
func NewPrefs(engine KVEngine, namespace string) *Prefs {
	if namespace == "" {
		namespace = DefaultPrefsNamespace
	}
	return &Prefs{engine: engine, namespace: namespace}
}

func (p *Prefs) key(name string) []byte {
	return []byte(p.namespace + name)
}

// GetString returns the value for name, or def if unset.
func (p *Prefs) GetString(ctx context.Context, name, def string) (string, error) {
	v, err := p.engine.Get(ctx, p.key(name))
	if errors.Is(err, ErrKeyNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return string(v), nil
}

// SetString stores a string value.
func (p *Prefs) SetString(ctx context.Context, name, value string) error {
	return p.engine.Set(ctx, p.key(name), []byte(value))
}

// GetBool returns the boolean for name. Unset reads as false.
func (p *Prefs) GetBool(ctx context.Context, name string) (bool, error) {
	v, err := p.GetString(ctx, name, prefFalse)
	if err != nil {
		return false, err
	}
	return v == prefTrue, nil
}

// SetBool stores a boolean value.
func (p *Prefs) SetBool(ctx context.Context, name string, value bool) error {
	v := prefFalse
	if value {
		v = prefTrue
	}
	return p.SetString(ctx, name, v)
}

// Delete removes name.
func (p *Prefs) Delete(ctx context.Context, name string) error {
	return p.engine.Delete(ctx, p.key(name))
}

// Names returns every set name starting with prefix, without the namespace.
func (p *Prefs) Names(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	err := p.engine.Scan(ctx, p.key(prefix), func(k, _ []byte) bool {
		names = append(names, strings.TrimPrefix(string(k), p.namespace))
		return true
	})
	return names, err
}
