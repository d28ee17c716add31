package scanner

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/smbcopy/pkg/plan"
	"github.com/marmos91/smbcopy/pkg/sanitize"
)

// answers replies from a table keyed by slash path and records every change
// it was asked about. Unknown paths are approved.
type answers struct {
	replies map[string]bool
	asked   []plan.Change
}

func (a *answers) confirm(c plan.Change) (bool, error) {
	a.asked = append(a.asked, c)
	if ok, found := a.replies[filepath.ToSlash(c.Path)]; found {
		return ok, nil
	}
	return true, nil
}

func (a *answers) askedPaths() []string {
	out := make([]string, len(a.asked))
	for i, c := range a.asked {
		out[i] = filepath.ToSlash(c.Path)
	}
	return out
}

func sampleFS() fstest.MapFS {
	return fstest.MapFS{
		"a:b.txt":           {Data: []byte("ab")},
		"c":                 {Mode: fs.ModeDir | 0o755},
		"c/plain.txt":       {Data: []byte("plain")},
		`d"e.txt`:           {Data: []byte("de")},
		"x/y:z/inner'q.txt": {Data: []byte("inner")},
		"x/y:z/clean.txt":   {Data: []byte("clean")},
		"x/keep.txt":        {Data: []byte("keep")},
	}
}

func newScanner(a *answers, out *bytes.Buffer, fsys fs.FS, opts ...Option) *Scanner {
	opts = append([]Option{
		WithOutput(out),
		WithFS(func(string) fs.FS { return fsys }),
	}, opts...)
	return New(sanitize.Default(), a.confirm, opts...)
}

func TestScanPromptsOnlyForChangingNames(t *testing.T) {
	a := &answers{}
	var out bytes.Buffer

	p, err := newScanner(a, &out, sampleFS()).Scan(context.Background(), "src")
	require.NoError(t, err)

	assert.Equal(t, []string{"a:b.txt", `d"e.txt`, "x/y:z", "x/y:z/inner'q.txt"}, a.askedPaths())
	assert.Equal(t, "--- Scanning src ---\n\n", out.String())

	assert.Equal(t, plan.RenameMap{
		"a:b.txt":                               "a-b.txt",
		`d"e.txt`:                               "d-e.txt",
		filepath.FromSlash("x/y:z"):             filepath.FromSlash("x/y-z"),
		filepath.FromSlash("x/y:z/inner'q.txt"): filepath.FromSlash("x/y:z/inner-q.txt"),
	}, p.Renames)
	assert.Empty(t, p.Skips)
}

func TestScanChangeDescribesLeafRename(t *testing.T) {
	a := &answers{}
	_, err := newScanner(a, &bytes.Buffer{}, sampleFS()).Scan(context.Background(), "src")
	require.NoError(t, err)

	require.Len(t, a.asked, 4)
	dir := a.asked[2]
	assert.Equal(t, plan.KindDir, dir.Kind)
	assert.Equal(t, "Rename /x/y:z to /x/y-z", dir.String())

	file := a.asked[3]
	assert.Equal(t, plan.KindFile, file.Kind)
	assert.Equal(t, "Rename /x/y:z/inner'q.txt to /x/y:z/inner-q.txt", file.String())
}

func TestScanDeclinedEntriesAreSkipped(t *testing.T) {
	a := &answers{replies: map[string]bool{`d"e.txt`: false}}
	var out bytes.Buffer

	p, err := newScanner(a, &out, sampleFS()).Scan(context.Background(), "src")
	require.NoError(t, err)

	assert.True(t, p.Skipped(`d"e.txt`))
	assert.NotContains(t, p.Renames, `d"e.txt`)
	assert.Contains(t, out.String(), "/d\"e.txt will be skipped\n")
}

func TestScanNotifier(t *testing.T) {
	a := &answers{replies: map[string]bool{`d"e.txt`: false}}
	var out bytes.Buffer
	var notices []string

	_, err := newScanner(a, &out, sampleFS(), WithNotifier(func(msg string) {
		notices = append(notices, msg)
	})).Scan(context.Background(), "src")
	require.NoError(t, err)

	assert.Equal(t, []string{`/d"e.txt will be skipped`}, notices)
	assert.NotContains(t, out.String(), "will be skipped")
}

func TestScanDeclinedDirectory(t *testing.T) {
	replies := map[string]bool{"x/y:z": false}

	t.Run("DescendantsStillVisited", func(t *testing.T) {
		a := &answers{replies: replies}
		p, err := newScanner(a, &bytes.Buffer{}, sampleFS()).Scan(context.Background(), "src")
		require.NoError(t, err)

		assert.Contains(t, a.askedPaths(), "x/y:z/inner'q.txt")
		assert.True(t, p.Skipped(filepath.FromSlash("x/y:z")))
		assert.Contains(t, p.Renames, filepath.FromSlash("x/y:z/inner'q.txt"))
	})

	t.Run("Pruned", func(t *testing.T) {
		a := &answers{replies: replies}
		p, err := newScanner(a, &bytes.Buffer{}, sampleFS(), WithPruneSkipped(true)).Scan(context.Background(), "src")
		require.NoError(t, err)

		assert.NotContains(t, a.askedPaths(), "x/y:z/inner'q.txt")
		assert.True(t, p.Skipped(filepath.FromSlash("x/y:z")))
		assert.NotContains(t, p.Renames, filepath.FromSlash("x/y:z/inner'q.txt"))
	})
}

func TestScanCleanTree(t *testing.T) {
	fsys := fstest.MapFS{
		"a.txt":     {Data: []byte("a")},
		"dir/b.txt": {Data: []byte("b")},
	}
	a := &answers{}
	p, err := newScanner(a, &bytes.Buffer{}, fsys).Scan(context.Background(), "src")
	require.NoError(t, err)

	assert.Empty(t, a.asked)
	assert.Zero(t, p.Len())
}

func TestScanCollisionsAreAccepted(t *testing.T) {
	fsys := fstest.MapFS{
		"a:b": {Data: []byte("1")},
		"a'b": {Data: []byte("2")},
		"c:d": {Data: []byte("3")},
		"c-d": {Data: []byte("4")},
	}
	p, err := newScanner(&answers{}, &bytes.Buffer{}, fsys).Scan(context.Background(), "src")
	require.NoError(t, err)

	assert.Equal(t, "a-b", p.Renames["a:b"])
	assert.Equal(t, "a-b", p.Renames["a'b"])
	assert.Equal(t, "c-d", p.Renames["c:d"])
}

func TestScanConfirmErrorStops(t *testing.T) {
	aborted := errors.New("aborted")
	calls := 0
	confirm := func(plan.Change) (bool, error) {
		calls++
		return false, aborted
	}
	s := New(sanitize.Default(), confirm,
		WithOutput(&bytes.Buffer{}),
		WithFS(func(string) fs.FS { return sampleFS() }))

	p, err := s.Scan(context.Background(), "src")
	assert.ErrorIs(t, err, aborted)
	assert.Nil(t, p)
	assert.Equal(t, 1, calls)
}

func TestScanCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newScanner(&answers{}, &bytes.Buffer{}, sampleFS()).Scan(ctx, "src")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")
	s := New(sanitize.Default(), (&answers{}).confirm, WithOutput(&bytes.Buffer{}))

	_, err := s.Scan(context.Background(), root)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), root)
}

func TestScanRealDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a:b.txt"), []byte("ab"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "c"), 0o755))

	var out bytes.Buffer
	s := New(sanitize.Default(), (&answers{}).confirm, WithOutput(&out))
	p, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, plan.RenameMap{"a:b.txt": "a-b.txt"}, p.Renames)
	assert.Equal(t, "--- Scanning "+root+" ---\n\n", out.String())
}

func TestScanCustomRule(t *testing.T) {
	rule, err := sanitize.NewRule("#", '_')
	require.NoError(t, err)

	fsys := fstest.MapFS{"a#b": {Data: []byte("x")}, "c:d": {Data: []byte("y")}}
	a := &answers{}
	p, err := New(rule, a.confirm,
		WithOutput(&bytes.Buffer{}),
		WithFS(func(string) fs.FS { return fsys })).Scan(context.Background(), "src")
	require.NoError(t, err)

	assert.Equal(t, plan.RenameMap{"a#b": "a_b"}, p.Renames)
}
