package persist_test

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/sisyphus/internal/achievements"
	"github.com/vovakirdan/sisyphus/internal/highscores"
	"github.com/vovakirdan/sisyphus/internal/persist"
	"github.com/vovakirdan/sisyphus/internal/reference"
)

func quietManager(b persist.Backend, opts ...persist.Option) *persist.Manager {
	opts = append([]persist.Option{persist.WithLogger(log.New(io.Discard))}, opts...)
	return persist.NewManager(b, opts...)
}

// countingBackend records writes per key.
type countingBackend struct {
	*persist.MemoryBackend
	writes map[string]int
}

func newCountingBackend() *countingBackend {
	return &countingBackend{MemoryBackend: persist.NewMemoryBackend(), writes: make(map[string]int)}
}

func (c *countingBackend) SetItem(key, value string) error {
	c.writes[key]++
	return c.MemoryBackend.SetItem(key, value)
}

// selfSavingElement saves itself from inside Deserialize, like a field whose
// setter persists while being hydrated.
type selfSavingElement struct {
	manager *persist.Manager
	value   int
}

func (e *selfSavingElement) Serialize() ([]byte, error) { return json.Marshal(e.value) }

func (e *selfSavingElement) Deserialize(data []byte) error {
	if err := json.Unmarshal(data, &e.value); err != nil {
		return err
	}
	e.manager.Save(e)
	return nil
}

func (e *selfSavingElement) Bind(m *persist.Manager) { e.manager = m }

func stored(t *testing.T, b persist.Backend, key string) string {
	t.Helper()
	v, ok, err := b.GetItem(key)
	require.NoError(t, err)
	require.True(t, ok, "expected key %q to be stored", key)
	return v
}

func TestEndToEndDefaultThenSet(t *testing.T) {
	b := persist.NewMemoryBackend()
	m := quietManager(b)
	ref := reference.NewPersistent(5, true)

	m.RegisterAll(persist.Registration{"a.b": ref})

	assert.Equal(t, 5, ref.Get(), "missing JSON leaves the default in place")
	_, ok, _ := b.GetItem("a")
	assert.False(t, ok, "loading must not write")

	ref.Set(9)
	assert.JSONEq(t, `{"b": 9}`, stored(t, b, "a"))
}

func TestRoundTrip(t *testing.T) {
	b := persist.NewMemoryBackend()

	m1 := quietManager(b)
	seed := reference.NewPersistent(-1, false)
	name := reference.NewPersistent("", false)
	ach := achievements.New()
	scores := highscores.New(highscores.Descending[int], 3, nil)
	m1.RegisterAll(persist.Registration{
		"game": persist.Registration{
			"seed":          seed,
			"profile.name":  name,
			"achievements":  ach,
			"scores.ladder": scores,
		},
	})
	seed.Set(42)
	name.Set("sisyphus")
	ach.Unlock("first", false)
	scores.Add("a", 10, false)
	scores.Add("b", 30, false)
	m1.Save(seed)
	first := stored(t, b, "game")

	m2 := quietManager(b)
	seed2 := reference.NewPersistent(-1, false)
	name2 := reference.NewPersistent("", false)
	ach2 := achievements.New()
	scores2 := highscores.New(highscores.Descending[int], 3, nil)
	m2.RegisterAll(persist.Registration{
		"game.seed":          seed2,
		"game.profile.name":  name2,
		"game.achievements":  ach2,
		"game.scores.ladder": scores2,
	})

	assert.Equal(t, 42, seed2.Get())
	assert.Equal(t, "sisyphus", name2.Get())
	assert.True(t, ach2.IsUnlocked("first"))
	require.Len(t, scores2.Entries(), 2)
	assert.Equal(t, 30, scores2.Entries()[0].Score)

	m2.SaveKey("game")
	assert.Equal(t, first, stored(t, b, "game"), "save after load reproduces the same JSON")
}

func TestSaveOverlayPreservesUnknownMembers(t *testing.T) {
	b := persist.NewMemoryBackend()
	require.NoError(t, b.SetItem("opts", `{"legacy":  [1, 2.50, "x"],"volume":3,"nested":{"keep":true,"level":1}}`))

	m := quietManager(b)
	volume := reference.NewPersistent(0, false)
	level := reference.NewPersistent(0, false)
	m.RegisterAll(persist.Registration{
		"opts.volume":       volume,
		"opts.nested.level": level,
	})
	require.Equal(t, 3, volume.Get())
	require.Equal(t, 1, level.Get())

	volume.Set(7)
	level.Set(2)
	m.Save(volume)

	assert.Equal(t,
		`{"legacy":  [1, 2.50, "x"],"volume":7,"nested":{"keep":true,"level":2}}`,
		stored(t, b, "opts"),
		"unknown members keep their bytes and order")
}

func TestSaveAppendsMissingBranches(t *testing.T) {
	b := persist.NewMemoryBackend()
	require.NoError(t, b.SetItem("opts", `{"other":1}`))

	m := quietManager(b)
	deep := reference.NewPersistent("x", false)
	m.Register("opts.a.b.c", deep)
	m.SaveKey("opts")

	assert.JSONEq(t, `{"other":1,"a":{"b":{"c":"x"}}}`, stored(t, b, "opts"))
}

func TestSaveFillsNullBranch(t *testing.T) {
	b := persist.NewMemoryBackend()
	require.NoError(t, b.SetItem("a", `{"b":null,"x":1}`))

	m := quietManager(b)
	c := reference.NewPersistent("v", false)
	m.Register("a.b.c", c)
	m.Save(c)

	assert.Equal(t, `{"b":{"c":"v"},"x":1}`, stored(t, b, "a"))
}

func TestSaveMemberNamesWithPathSyntax(t *testing.T) {
	b := persist.NewMemoryBackend()
	require.NoError(t, b.SetItem("root", `{"#n":1,"keep":true}`))

	m := quietManager(b, persist.WithSeparator("/"))
	names := []string{"#n", "a.b|c*", ":x", "0", `we\ird?`, "@this"}
	refs := make(map[string]*reference.Persistent[int])
	for i, name := range names {
		refs[name] = reference.NewPersistent(i+10, false)
		m.Register("root/"+name, refs[name])
	}
	require.Equal(t, 1, refs["#n"].Get(), "escaped member is loaded")

	refs["#n"].Set(2)
	m.SaveKey("root")

	doc := stored(t, b, "root")
	assert.JSONEq(t,
		`{"#n":2,"keep":true,"a.b|c*":11,":x":12,"0":13,"we\\ird?":14,"@this":15}`,
		doc)
	assert.True(t, strings.HasPrefix(doc, `{"#n":2,"keep":true,`), "existing members are replaced in place")
}

// mapElement has a dynamic type that cannot key a map.
type mapElement map[string]int

func (e mapElement) Serialize() ([]byte, error) { return json.Marshal(map[string]int(e)) }

func (e mapElement) Deserialize(data []byte) error {
	var v map[string]int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	clear(e)
	for k, n := range v {
		e[k] = n
	}
	return nil
}

func (e mapElement) Bind(*persist.Manager) {}

func TestNonComparableElementRejected(t *testing.T) {
	b := persist.NewMemoryBackend()
	m := quietManager(b)
	el := mapElement{"v": 1}

	assert.NotPanics(t, func() {
		m.Register("a.m", el)
		m.Save(el)
		m.Load(el)
	})
	_, ok := m.RootKeyOf(el)
	assert.False(t, ok)
	assert.Empty(t, m.RootKeys())

	_, present, err := b.GetItem("a")
	require.NoError(t, err)
	assert.False(t, present)
}

func TestRootLeafIsWrittenDirectly(t *testing.T) {
	b := persist.NewMemoryBackend()
	require.NoError(t, b.SetItem("ach", `{"old":true,"bogus":false}`))

	m := quietManager(b)
	ach := achievements.New()
	m.Register("ach", ach)
	assert.True(t, ach.IsUnlocked("old"))
	assert.False(t, ach.IsUnlocked("bogus"))

	ach.Unlock("new", true)
	assert.JSONEq(t, `{"old":true,"new":true}`, stored(t, b, "ach"))
}

func TestRegisterConflictKeepsFirst(t *testing.T) {
	b := persist.NewMemoryBackend()
	require.NoError(t, b.SetItem("a", `{"b":1}`))
	m := quietManager(b)

	first := reference.NewPersistent(0, false)
	second := reference.NewPersistent(100, false)
	m.Register("a.b", first)
	first.Set(5)

	m.Register("a.b", second)

	_, ok := m.RootKeyOf(second)
	assert.False(t, ok, "second registration is rejected")
	assert.Equal(t, 100, second.Get(), "rejected element is not loaded")
	assert.Equal(t, 5, first.Get(), "first element is untouched by the rejected registration")

	m.Save(second)
	assert.Equal(t, `{"b":1}`, stored(t, b, "a"), "saving an unknown element is a no-op")
}

func TestRegisterBranchOverLeafRejected(t *testing.T) {
	m := quietManager(persist.NewMemoryBackend())
	leaf := reference.NewPersistent(1, false)
	below := reference.NewPersistent(2, false)

	m.Register("a.b", leaf)
	m.Register("a.b.c", below)

	_, ok := m.RootKeyOf(below)
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, m.RootKeys())
}

func TestRegisterSameElementTwiceRejected(t *testing.T) {
	m := quietManager(persist.NewMemoryBackend())
	ref := reference.NewPersistent(1, false)

	m.Register("a.x", ref)
	m.Register("b.x", ref)

	root, ok := m.RootKeyOf(ref)
	require.True(t, ok)
	assert.Equal(t, "a", root)
	assert.Equal(t, []string{"a"}, m.RootKeys(), "rejected branch is pruned")
}

func TestUnsupportedRegistrationValueSkipped(t *testing.T) {
	m := quietManager(persist.NewMemoryBackend())
	m.RegisterAll(persist.Registration{"a": 12, "b..c": reference.NewPersistent(1, false)})
	assert.Empty(t, m.RootKeys())
}

func TestCustomSeparator(t *testing.T) {
	b := persist.NewMemoryBackend()
	m := quietManager(b, persist.WithSeparator("/"))
	ref := reference.NewPersistent("v", true)

	m.Register("root/with.dot", ref)
	ref.Set("w")

	assert.JSONEq(t, `{"with.dot":"w"}`, stored(t, b, "root"))
}

func TestRawLeafPassesThrough(t *testing.T) {
	b := persist.NewMemoryBackend()
	m := quietManager(b)
	m.RegisterAll(persist.Registration{
		"cfg": persist.Registration{"list": json.RawMessage(`[1,2,3]`)},
	})
	m.SaveKey("cfg")
	assert.JSONEq(t, `{"list":[1,2,3]}`, stored(t, b, "cfg"))
}

func TestSaveDuringLoadIsDeferredOnce(t *testing.T) {
	b := newCountingBackend()
	require.NoError(t, b.MemoryBackend.SetItem("k", `{"x":1,"y":2,"z":3}`))
	b.writes = make(map[string]int)

	m := quietManager(b)
	x := &selfSavingElement{}
	y := &selfSavingElement{}
	z := &selfSavingElement{}
	m.RegisterAll(persist.Registration{"k.x": x, "k.y": y, "k.z": z})

	assert.Equal(t, 1, b.writes["k"], "three saves during load collapse into one")
	assert.False(t, m.Loading())
	assert.JSONEq(t, `{"x":1,"y":2,"z":3}`, stored(t, b, "k"))

	m.LoadKey("k")
	assert.Equal(t, 2, b.writes["k"])
}

func TestSaveWhileLoadingDoesNotWrite(t *testing.T) {
	b := newCountingBackend()
	require.NoError(t, b.MemoryBackend.SetItem("k", `{"x":1,"z":null}`))
	b.writes = make(map[string]int)

	m := quietManager(b)
	observed := -1
	x := &selfSavingElement{}
	watcher := &hookElement{onLoad: func() {
		observed = b.writes["k"]
	}}
	m.RegisterAll(persist.Registration{"k.x": x, "k.z": watcher})

	assert.Equal(t, 0, observed, "x's save must not be written while z is still loading")
	assert.Equal(t, 1, b.writes["k"])
}

// hookElement runs onLoad when deserialized. Children are walked in sorted
// order, so "z" loads after "x".
type hookElement struct {
	onLoad func()
}

func (h *hookElement) Serialize() ([]byte, error) { return []byte(`null`), nil }

func (h *hookElement) Deserialize([]byte) error {
	h.onLoad()
	return nil
}

func (h *hookElement) Bind(*persist.Manager) {}

func TestLoadMissingSubtreeLeavesDefaults(t *testing.T) {
	b := persist.NewMemoryBackend()
	require.NoError(t, b.SetItem("g", `{"present":3,"branch":5}`))

	m := quietManager(b)
	present := reference.NewPersistent(0, false)
	absent := reference.NewPersistent(11, false)
	underScalar := reference.NewPersistent(22, false)
	m.RegisterAll(persist.Registration{
		"g.present":     present,
		"g.absent":      absent,
		"g.branch.leaf": underScalar,
	})

	assert.Equal(t, 3, present.Get())
	assert.Equal(t, 11, absent.Get())
	assert.Equal(t, 22, underScalar.Get())
}

func TestLoadInvalidJSONIgnored(t *testing.T) {
	b := persist.NewMemoryBackend()
	require.NoError(t, b.SetItem("g", `{not json`))

	m := quietManager(b)
	ref := reference.NewPersistent(4, false)
	m.Register("g.v", ref)
	assert.Equal(t, 4, ref.Get())

	m.SaveKey("g")
	assert.JSONEq(t, `{"v":4}`, stored(t, b, "g"))
}

func TestStorageFailuresAreSticky(t *testing.T) {
	b := persist.NewMemoryBackend()
	require.NoError(t, b.SetItem("g", `{"v":1,"extra":true}`))
	m := quietManager(b)
	ref := reference.NewPersistent(0, false)

	b.FailReads = true
	m.Register("g.v", ref)
	assert.True(t, m.StorageAccessDenied())
	assert.Equal(t, 0, ref.Get())

	ref.Set(3)
	m.Save(ref)
	b.FailReads = false
	assert.Equal(t, `{"v":1,"extra":true}`, stored(t, b, "g"), "save is skipped when the current value cannot be read")

	m.ResetAccessDenied()
	b.FailWrites = true
	m.Save(ref)
	assert.True(t, m.StorageAccessDenied())

	b.FailWrites = false
	m.Save(ref)
	assert.True(t, m.StorageAccessDenied(), "flag stays set until reset")
	assert.JSONEq(t, `{"v":3,"extra":true}`, stored(t, b, "g"))
}

func TestUnknownKeysAreNoOps(t *testing.T) {
	b := persist.NewMemoryBackend()
	m := quietManager(b)

	m.SaveKey("missing")
	m.LoadKey("missing")
	m.Load(reference.NewPersistent(1, false))

	keys, err := b.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestLoadAllDefaultsToEveryRoot(t *testing.T) {
	b := persist.NewMemoryBackend()
	m := quietManager(b)
	x := reference.NewPersistent(0, false)
	y := reference.NewPersistent(0, false)
	m.RegisterAll(persist.Registration{"x.v": x, "y.v": y})

	require.NoError(t, b.SetItem("x", `{"v":1}`))
	require.NoError(t, b.SetItem("y", `{"v":2}`))
	m.LoadAll()

	assert.Equal(t, 1, x.Get())
	assert.Equal(t, 2, y.Get())
	assert.Equal(t, []string{"x", "y"}, m.RootKeys())
}

func TestClearRemovesBackingEntry(t *testing.T) {
	b := persist.NewMemoryBackend()
	m := quietManager(b)
	ref := reference.NewPersistent(1, true)
	m.Register("c.v", ref)
	ref.Set(2)

	require.True(t, m.Clear("c"))
	_, ok, _ := b.GetItem("c")
	assert.False(t, ok)
	assert.Equal(t, 2, ref.Get())
}
