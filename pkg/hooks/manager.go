// Package hooks lets independently built task libraries plug into the
// lifecycle of a publishing task.
//
// A plugin is any value implementing one or more of the hook interfaces in
// this package. Plugins register with a Manager, usually the default one from
// an init function, and tasks call the Manager when something happens.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
)

var (
	// ErrPluginNil is returned when a nil plugin is passed to Register.
	ErrPluginNil = errors.New("plugin cannot be nil")

	// ErrPluginAlreadyRegistered is returned when a plugin is registered twice.
	ErrPluginAlreadyRegistered = errors.New("plugin already registered")

	// ErrPluginNotComparable is returned for plugins that cannot be told apart,
	// such as maps or slices. Register a pointer instead.
	ErrPluginNotComparable = errors.New("plugin must be comparable")

	// ErrNoHooks is returned when a plugin implements none of the known hooks.
	ErrNoHooks = errors.New("plugin implements no known hook")

	// ErrUnknownHook is returned by Invoke for a hook name with no spec.
	ErrUnknownHook = errors.New("unknown hook")

	// ErrInvalidArgument is returned when a hook argument has the wrong type.
	ErrInvalidArgument = errors.New("invalid hook argument")
)

// Manager holds registered plugins and dispatches hook calls to them.
// It is safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	plugins []any
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Register adds plugin to the manager.
func (m *Manager) Register(plugin any) error {
	if plugin == nil {
		return ErrPluginNil
	}
	if !identifiable(plugin) {
		return ErrPluginNotComparable
	}
	if !implementsAny(plugin) {
		return fmt.Errorf("%w: %T", ErrNoHooks, plugin)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Contains(m.plugins, plugin) {
		return ErrPluginAlreadyRegistered
	}

	m.plugins = append(m.plugins, plugin)
	return nil
}

// Unregister removes plugin and reports whether it was registered.
func (m *Manager) Unregister(plugin any) bool {
	if !identifiable(plugin) {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.Index(m.plugins, plugin)
	if i < 0 {
		return false
	}

	// New slice so snapshots taken by in-flight calls stay intact.
	m.plugins = slices.Concat(m.plugins[:i], m.plugins[i+1:])
	return true
}

// IsRegistered reports whether plugin is registered.
func (m *Manager) IsRegistered(plugin any) bool {
	if !identifiable(plugin) {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Contains(m.plugins, plugin)
}

// Implementations returns the plugins providing hook name, in call order:
// most recently registered first.
func (m *Manager) Implementations(name string) []any {
	spec, ok := specs[name]
	if !ok {
		return nil
	}

	var impls []any
	for _, p := range m.snapshot() {
		if spec.provides(p) {
			impls = append(impls, p)
		}
	}
	return impls
}

// Clear removes every plugin.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plugins = nil
}

// Invoke calls hook name on every plugin providing it, most recently
// registered first, and returns the non-nil results in call order. A typed
// nil, such as a nil *T in an interface, counts as no result. For
// first-result hooks the call stops at the first non-nil result. The first
// implementation error aborts the call.
func (m *Manager) Invoke(ctx context.Context, name string, args Args) ([]any, error) {
	spec, ok := specs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHook, name)
	}

	var results []any
	for _, p := range m.snapshot() {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		res, implemented, err := spec.call(ctx, p, args)
		if !implemented {
			continue
		}
		if err != nil {
			return results, fmt.Errorf("hook %s: %w", name, err)
		}
		if isNil(res) {
			continue
		}

		results = append(results, res)
		if spec.FirstResult {
			break
		}
	}
	return results, nil
}

// snapshot returns the plugins in call order without holding the lock
// while hooks run.
func (m *Manager) snapshot() []any {
	m.mu.RLock()
	plugins := slices.Clone(m.plugins)
	m.mu.RUnlock()

	slices.Reverse(plugins)
	return plugins
}

// identifiable reports whether plugin can be compared with ==. The dynamic
// value is checked, so a struct whose interface field holds a slice fails.
func identifiable(plugin any) bool {
	return plugin != nil && reflect.ValueOf(plugin).Comparable()
}

// isNil reports whether v is nil or holds a nil pointer, map, slice, func or
// channel.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

func implementsAny(plugin any) bool {
	for _, spec := range specs {
		if spec.provides(plugin) {
			return true
		}
	}
	return false
}
