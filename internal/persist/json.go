package persist

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// saveRoot writes one root key. During a load the key is queued instead,
// so an element saving itself mid-hydration cannot stomp on siblings that
// have not been hydrated yet.
func (m *Manager) saveRoot(key string) {
	if m.loading {
		if _, queued := m.deferred[key]; !queued {
			m.deferred[key] = struct{}{}
			m.deferredOrder = append(m.deferredOrder, key)
		}
		m.logger.Debug("save triggered while loading, deferring", "key", key)
		return
	}

	n, ok := m.root.children[key]
	if !ok {
		m.logger.Warn("no entities registered under key, ignoring save", "key", key)
		return
	}

	var data []byte
	if n.isLeaf() {
		out, ok := m.serialize(n.leaf, key)
		if !ok {
			return
		}
		data = out
	} else {
		stored, _, ok := m.read(key)
		if !ok {
			// Writing now would replace whatever is stored with only the
			// registered members.
			m.logger.Warn("skipping save, existing value could not be read", "key", key)
			return
		}
		var existing gjson.Result
		if stored != "" {
			if gjson.Valid(stored) {
				existing = gjson.Parse(stored)
			}
			if !existing.IsObject() && existing.Type != gjson.Null {
				m.logger.Warn("stored value is not an object, replacing it", "key", key)
			}
		}
		data = m.overlay(existing, n, key)
	}

	if err := m.backend.SetItem(key, string(data)); err != nil {
		m.denied = true
		m.logger.Warn("failed to save content", "key", key, "error", err)
	}
}

// overlay sets the members that n has registered elements for on top of
// existing. Unregistered members keep their order and their bytes, and
// registered members that were not present are appended.
func (m *Manager) overlay(existing gjson.Result, n *node, path string) []byte {
	doc := []byte("{}")
	if existing.IsObject() {
		doc = []byte(existing.Raw)
	}
	for _, name := range n.keys() {
		member := memberPath(name)
		out, ok := m.overlayChild(existing.Get(member), n.children[name], m.join(path, name))
		if !ok {
			continue
		}
		next, err := sjson.SetRawBytes(doc, member, out)
		if err != nil {
			m.logger.Warn("failed to set member", "path", m.join(path, name), "error", err)
			continue
		}
		doc = next
	}
	return doc
}

// overlayChild renders one registered member. A stored null counts as
// missing.
func (m *Manager) overlayChild(existing gjson.Result, child *node, path string) ([]byte, bool) {
	if child.isLeaf() {
		return m.serialize(child.leaf, path)
	}
	if existing.Exists() && existing.Type != gjson.Null && !existing.IsObject() {
		m.logger.Warn("stored value is not an object where a branch is registered, leaving it", "path", path)
		return nil, false
	}
	return m.overlay(existing, child, path), true
}

// memberPath escapes name into a single gjson/sjson path component.
func memberPath(name string) string {
	p := gjson.Escape(name)
	if strings.HasPrefix(p, ":") {
		// sjson reads a leading colon as a forced object key.
		p = `\` + p
	}
	return p
}

func (m *Manager) serialize(el Element, path string) ([]byte, bool) {
	data, err := el.Serialize()
	if err != nil {
		m.logger.Warn("element failed to serialize", "path", path, "error", err)
		return nil, false
	}
	if !json.Valid(data) {
		m.logger.Warn("element produced invalid JSON", "path", path)
		return nil, false
	}
	return data, true
}

// loadRoot hydrates the elements registered under one root key. Members
// missing from the stored JSON leave their elements untouched.
func (m *Manager) loadRoot(key string) {
	n, ok := m.root.children[key]
	if !ok {
		m.logger.Warn("no entities registered under key, ignoring load", "key", key)
		return
	}

	stored, present, ok := m.read(key)
	if !ok || !present {
		return
	}
	if !gjson.Valid(stored) {
		m.logger.Warn("error parsing stored JSON", "key", key, "value", stored)
		return
	}

	if n.isLeaf() {
		m.deserialize(n.leaf, []byte(stored), key)
		return
	}
	m.distribute(gjson.Parse(stored), n, key)
}

func (m *Manager) distribute(doc gjson.Result, n *node, path string) {
	if !doc.IsObject() {
		if doc.Type != gjson.Null {
			m.logger.Warn("expected an object, skipping subtree", "path", path)
		}
		return
	}

	members := make(map[string]gjson.Result)
	doc.ForEach(func(k, v gjson.Result) bool {
		members[k.String()] = v
		return true
	})

	for _, name := range n.keys() {
		v, ok := members[name]
		if !ok {
			continue
		}
		child := n.children[name]
		if child.isLeaf() {
			m.deserialize(child.leaf, []byte(v.Raw), m.join(path, name))
		} else {
			m.distribute(v, child, m.join(path, name))
		}
	}
}

func (m *Manager) deserialize(el Element, data []byte, path string) {
	if err := el.Deserialize(data); err != nil {
		m.logger.Warn("unexpected stored value", "path", path, "error", err)
	}
}

// read fetches a backing value. ok is false when the backend failed.
func (m *Manager) read(key string) (value string, present, ok bool) {
	value, present, err := m.backend.GetItem(key)
	if err != nil {
		m.denied = true
		m.logger.Warn("unable to read from storage, persistent storage will not work", "key", key, "error", err)
		return "", false, false
	}
	return value, present, true
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
