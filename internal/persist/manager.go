package persist

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultSeparator splits registration paths into segments.
const DefaultSeparator = "."

// Registration describes elements to register. Values may be an Element,
// a nested Registration (or map[string]any), or a json.RawMessage which is
// registered as an opaque RawElement. Keys containing the separator expand
// into nested branches, so {"a.b": el} equals {"a": {"b": el}}.
type Registration map[string]any

// Manager owns the registrar tree and coordinates saves and loads against a
// Backend. It is not safe for concurrent use; one game loop owns it.
type Manager struct {
	backend  Backend
	sep      string
	logger   *log.Logger
	root     *node
	rootKeys map[Element]string

	loading       bool
	deferred      map[string]struct{}
	deferredOrder []string
	denied        bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithSeparator sets the path separator used by Register and RegisterAll.
func WithSeparator(sep string) Option {
	return func(m *Manager) {
		if sep != "" {
			m.sep = sep
		}
	}
}

// WithLogger sets the logger for warnings about misuse and storage failures.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager with an empty registrar over backend.
func NewManager(backend Backend, opts ...Option) *Manager {
	m := &Manager{
		backend:  backend,
		sep:      DefaultSeparator,
		logger:   log.Default().WithPrefix("persist"),
		root:     newBranch(),
		rootKeys: make(map[Element]string),
		deferred: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Separator returns the configured path separator.
func (m *Manager) Separator() string {
	return m.sep
}

// Register binds a single element at path. It is shorthand for
// RegisterAll(Registration{path: el}).
func (m *Manager) Register(path string, el Element) {
	if path == "" {
		m.logger.Warn("invalid empty path, element will not be registered")
		return
	}
	m.RegisterAll(Registration{path: el})
}

// RegisterAll merges reg into the registrar tree and then loads every root
// key that received a new element. Registering onto an occupied path is
// rejected with a warning and the earlier registration is kept. Saves
// requested while registering are deferred until the load finishes.
func (m *Manager) RegisterAll(reg Registration) {
	outer := !m.loading
	m.loading = true

	var roots []string
	seen := make(map[string]bool)
	m.merge(m.root, "", "", reg, func(root string) {
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	})

	if outer {
		m.loading = false
	}
	if len(roots) > 0 {
		m.load(roots)
		return
	}
	if outer {
		m.flushDeferred()
	}
}

func (m *Manager) merge(parent *node, rootKey, prefix string, reg Registration, added func(root string)) {
	keys := make([]string, 0, len(reg))
	for k := range reg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := reg[key]
		if key == "" {
			m.logger.Warn("empty path segment, skipping", "path", prefix)
			continue
		}

		// Expand "a.b.c" into a -> {"b.c": value}.
		if head, rest, found := strings.Cut(key, m.sep); found {
			if head == "" || rest == "" {
				m.logger.Warn("empty path segment, skipping", "path", m.join(prefix, key))
				continue
			}
			key, value = head, Registration{rest: value}
		}

		root := rootKey
		if root == "" {
			root = key
		}
		full := m.join(prefix, key)

		switch v := value.(type) {
		case Element:
			m.attach(parent, key, full, root, v, added)
		case json.RawMessage:
			m.attach(parent, key, full, root, NewRawElement(v), added)
		case Registration:
			m.branch(parent, key, full, root, v, added)
		case map[string]any:
			m.branch(parent, key, full, root, Registration(v), added)
		default:
			m.logger.Warn("unsupported element, skipping", "path", full, "type", typeName(value))
		}
	}
}

func (m *Manager) attach(parent *node, key, full, root string, el Element, added func(string)) {
	if _, exists := parent.children[key]; exists {
		m.logger.Warn("entity already exists at path, skipping", "path", full)
		return
	}
	if !indexable(el) {
		m.logger.Warn("element is not comparable, skipping", "path", full, "type", typeName(el))
		return
	}
	if prev, dup := m.rootKeys[el]; dup {
		m.logger.Warn("element is already registered, skipping", "path", full, "root", prev)
		return
	}
	parent.children[key] = newLeaf(el)
	m.rootKeys[el] = root
	el.Bind(m)
	added(root)
}

func (m *Manager) branch(parent *node, key, full, root string, reg Registration, added func(string)) {
	child, exists := parent.children[key]
	if exists && child.isLeaf() {
		m.logger.Warn("element exists where a branch was expected, skipping", "path", full)
		return
	}
	if !exists {
		child = newBranch()
		parent.children[key] = child
	}
	m.merge(child, root, full, reg, added)
	if !exists && child.leaves() == 0 {
		delete(parent.children, key)
	}
}

func (m *Manager) join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + m.sep + key
}

// Save writes the root key that el was registered under.
func (m *Manager) Save(el Element) {
	root, ok := m.RootKeyOf(el)
	if !ok {
		m.logger.Warn("manager does not have element, it will not be saved", "type", typeName(el))
		return
	}
	m.saveRoot(root)
}

// SaveKey writes the given root key.
func (m *Manager) SaveKey(rootKey string) {
	m.saveRoot(rootKey)
}

// Load re-reads the root key that el was registered under.
func (m *Manager) Load(el Element) {
	root, ok := m.RootKeyOf(el)
	if !ok {
		m.logger.Warn("manager does not have element, it will not be loaded", "type", typeName(el))
		return
	}
	m.load([]string{root})
}

// LoadKey re-reads the given root key.
func (m *Manager) LoadKey(rootKey string) {
	m.load([]string{rootKey})
}

// LoadAll hydrates elements from storage for the given root keys, or for
// every registered root key when none are given. Saves requested during
// the load run once per root key after it completes.
func (m *Manager) LoadAll(keys ...string) {
	if len(keys) == 0 {
		keys = m.RootKeys()
	}
	m.load(keys)
}

func (m *Manager) load(keys []string) {
	keys = dedupe(keys)
	if m.loading {
		// Nested load: the outermost call flushes deferred saves.
		for _, k := range keys {
			m.loadRoot(k)
		}
		return
	}

	m.loading = true
	for _, k := range keys {
		m.loadRoot(k)
	}
	m.loading = false
	m.flushDeferred()
}

func (m *Manager) flushDeferred() {
	if len(m.deferredOrder) == 0 {
		return
	}
	m.logger.Debug("performing deferred saves", "keys", m.deferredOrder)
	keys := m.deferredOrder
	m.deferred = make(map[string]struct{})
	m.deferredOrder = nil
	for _, k := range keys {
		m.saveRoot(k)
	}
}

// Loading reports whether a load is in progress.
func (m *Manager) Loading() bool {
	return m.loading
}

// RootKeys returns every registered root key, sorted.
func (m *Manager) RootKeys() []string {
	return m.root.keys()
}

// RootKeyOf returns the root key el was registered under.
func (m *Manager) RootKeyOf(el Element) (string, bool) {
	if !indexable(el) {
		return "", false
	}
	root, ok := m.rootKeys[el]
	return root, ok
}

// indexable reports whether el can key the element index. Looking up a
// map, slice or func value in a map panics.
func indexable(el Element) bool {
	v := reflect.ValueOf(el)
	return v.IsValid() && v.Comparable()
}

// StorageAccessDenied reports whether any backend read or write has failed
// since the manager was created or the flag was last reset.
func (m *Manager) StorageAccessDenied() bool {
	return m.denied
}

// ResetAccessDenied clears the sticky access-denied flag.
func (m *Manager) ResetAccessDenied() {
	m.denied = false
}

// Clear removes the backing entry for rootKey. In-memory element values are
// left alone, so the next save writes them again.
func (m *Manager) Clear(rootKey string) bool {
	if err := m.backend.RemoveItem(rootKey); err != nil {
		m.denied = true
		m.logger.Warn("failed to clear item", "key", rootKey, "error", err)
		return false
	}
	return true
}

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
