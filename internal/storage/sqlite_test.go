package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/sisyphus/internal/persist"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file and its directory were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestItemRoundTrip(t *testing.T) {
	ns := openTemp(t).Local()

	if _, ok, err := ns.GetItem("kh"); err != nil || ok {
		t.Fatalf("GetItem on empty store = ok %v, err %v", ok, err)
	}

	if err := ns.SetItem("kh", `{"a":1}`); err != nil {
		t.Fatalf("SetItem() failed: %v", err)
	}
	if err := ns.SetItem("kh", `{"a":2}`); err != nil {
		t.Fatalf("SetItem() overwrite failed: %v", err)
	}

	v, ok, err := ns.GetItem("kh")
	if err != nil || !ok || v != `{"a":2}` {
		t.Errorf("GetItem() = %q, %v, %v; want overwritten value", v, ok, err)
	}

	if err := ns.RemoveItem("kh"); err != nil {
		t.Fatalf("RemoveItem() failed: %v", err)
	}
	if _, ok, _ := ns.GetItem("kh"); ok {
		t.Error("Item still present after RemoveItem")
	}
	if err := ns.RemoveItem("kh"); err != nil {
		t.Errorf("RemoveItem() of a missing key should succeed, got %v", err)
	}
}

func TestNamespaceIsolation(t *testing.T) {
	store := openTemp(t)
	alice, bob := store.Namespace("alice"), store.Namespace("bob")

	if err := alice.SetItem("kh", "1"); err != nil {
		t.Fatal(err)
	}
	if err := bob.SetItem("kh", "2"); err != nil {
		t.Fatal(err)
	}
	if err := bob.SetItem("extra", "3"); err != nil {
		t.Fatal(err)
	}

	if v, _, _ := alice.GetItem("kh"); v != "1" {
		t.Errorf("alice sees %q, want her own value", v)
	}
	if _, ok, _ := store.Local().GetItem("kh"); ok {
		t.Error("local namespace must not see other namespaces")
	}

	keys, err := bob.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "extra" || keys[1] != "kh" {
		t.Errorf("bob.Keys() = %v, want [extra kh]", keys)
	}

	names, err := store.Namespaces()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "alice" || names[1] != "bob" {
		t.Errorf("Namespaces() = %v, want [alice bob]", names)
	}

	if err := bob.Clear(); err != nil {
		t.Fatal(err)
	}
	if keys, _ := bob.Keys(); len(keys) != 0 {
		t.Errorf("bob.Keys() after Clear = %v", keys)
	}
	if _, ok, _ := alice.GetItem("kh"); !ok {
		t.Error("Clear must not touch other namespaces")
	}
}

func TestItems(t *testing.T) {
	ns := openTemp(t).Namespace("n")
	for _, k := range []string{"b", "a"} {
		if err := ns.SetItem(k, "v"+k); err != nil {
			t.Fatal(err)
		}
	}

	items, err := ns.store.Items("n")
	if err != nil {
		t.Fatalf("Items() failed: %v", err)
	}
	if len(items) != 2 || items[0].Key != "a" || items[1].Value != "vb" {
		t.Errorf("Items() = %+v", items)
	}
	if items[0].UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestManagerOverStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	raw := persist.NewRawElement(nil)
	m := persist.NewManager(store.Local())
	m.Register("kh.raw", raw)
	if err := raw.Deserialize([]byte(`[1,2,3]`)); err != nil {
		t.Fatal(err)
	}
	m.Save(raw)
	store.Close()

	// Reopen and hydrate a fresh element
	store, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	again := persist.NewRawElement(nil)
	persist.NewManager(store.Local()).Register("kh.raw", again)
	if got := string(again.Value()); got != `[1,2,3]` {
		t.Errorf("reloaded value = %s, want [1,2,3]", got)
	}
}

func TestMemoryStore(t *testing.T) {
	store, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer store.Close()

	if err := store.Local().SetItem("k", "v"); err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := store.Local().GetItem("k"); !ok || v != "v" {
		t.Errorf("GetItem() = %q, %v", v, ok)
	}
}

func TestSessions(t *testing.T) {
	store := openTemp(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, user := range []string{"alice", "bob", "carol"} {
		err := store.SaveSession(SessionRecord{
			ID:        user + "-id",
			User:      user,
			Best:      i * 10,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			EndedAt:   base.Add(time.Duration(i)*time.Hour + 5*time.Minute),
		})
		if err != nil {
			t.Fatalf("SaveSession() failed: %v", err)
		}
	}

	recent, err := store.RecentSessions(2)
	if err != nil {
		t.Fatalf("RecentSessions() failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(recent))
	}
	if recent[0].User != "carol" || recent[1].User != "bob" {
		t.Errorf("Expected newest first, got %s, %s", recent[0].User, recent[1].User)
	}
	if recent[0].Best != 20 {
		t.Errorf("Expected best 20, got %d", recent[0].Best)
	}
	if d := recent[0].Duration(); d != 5*time.Minute {
		t.Errorf("Expected 5m duration, got %v", d)
	}

	if err := store.SaveSession(SessionRecord{ID: "alice-id", User: "alice"}); err == nil {
		t.Error("Expected duplicate session id to fail")
	}
}
