package assets

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/platinummonkey/capsync/pkg/fsutil"
	"github.com/platinummonkey/capsync/pkg/platform"
	"github.com/platinummonkey/capsync/pkg/plugins"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// writePluginFiles creates the given files (relative to the plugin root) and returns the root
func writePluginFiles(t *testing.T, base, id string, files ...string) string {
	t.Helper()
	root := filepath.Join(base, "node_modules", id)
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(id+":"+f), 0644))
	}
	return root
}

// listFiles returns every regular file below root as sorted slash paths
func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func cameraPlugin(t *testing.T, base string) *plugins.Manifest {
	root := writePluginFiles(t, base, "camera", "src/android/CameraPlugin.java", "res/xml/config.xml")
	return &plugins.Manifest{
		ID:      "camera",
		RootDir: root,
		Platforms: map[string]*plugins.PlatformElements{
			"android": {
				SourceFiles:   []plugins.SourceFile{{Src: "src/android/CameraPlugin.java", TargetDir: "src/com/example/camera"}},
				ResourceFiles: []plugins.ResourceFile{{Src: "res/xml/config.xml", Target: "res/xml/config.xml"}},
			},
		},
	}
}

func filePlugin(t *testing.T, base string) *plugins.Manifest {
	root := writePluginFiles(t, base, "file",
		"src/android/FileUtils.java", "libs/sdk.aar", "src/android/file.gradle", "libs/helper.jar", "www/file.js")
	return &plugins.Manifest{
		ID:      "file",
		RootDir: root,
		Platforms: map[string]*plugins.PlatformElements{
			"android": {
				SourceFiles: []plugins.SourceFile{{Src: "src/android/FileUtils.java", TargetDir: "src/org/apache/file"}},
				ResourceFiles: []plugins.ResourceFile{
					{Src: "libs/sdk.aar", Target: "libs/file-sdk.aar"},
					{Src: "www/file.js", Target: "assets/www/file.js"},
				},
				Frameworks: []plugins.Framework{
					{Src: "com.example:file:1.0"},
					{Src: "src/android/file.gradle", Custom: true, Type: plugins.FrameworkGradleReference},
				},
				LibFiles: []plugins.LibFile{{Src: "libs/helper.jar"}},
			},
		},
	}
}

func newTestSynchronizer(t *testing.T, base string, fsys fsutil.FS) *Synchronizer {
	return NewSynchronizer(filepath.Join(base, "android", "plugins"), platform.Android, fsys, nil, quietLogger())
}

func TestNewSynchronizer_Defaults(t *testing.T) {
	s := NewSynchronizer("/tmp/x", platform.Android, nil, nil, nil)
	assert.Equal(t, "/tmp/x", s.Root())
	assert.NotNil(t, s.fs)
	assert.NotNil(t, s.log)
	assert.Equal(t, DefaultConfig().MaxWorkers, s.config.MaxWorkers)
}

// TestSynchronize_CameraScenario tests a single bridge plugin with one source and one resource
func TestSynchronize_CameraScenario(t *testing.T) {
	base := t.TempDir()
	s := newTestSynchronizer(t, base, nil)

	report, err := s.Synchronize(context.Background(), []*plugins.Manifest{cameraPlugin(t, base)})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"src/main/java/com/example/camera/CameraPlugin.java",
		"src/main/res/xml/config.xml",
	}, listFiles(t, s.Root()))
	assert.Equal(t, 2, report.FileCount())
	assert.Equal(t, "camera", report.Plugins[0].PluginID)

	data, err := os.ReadFile(filepath.Join(s.Root(), "src/main/res/xml/config.xml"))
	require.NoError(t, err)
	assert.Equal(t, "camera:res/xml/config.xml", string(data))
}

// TestSynchronize_AllAssetKinds tests every destination rule together
func TestSynchronize_AllAssetKinds(t *testing.T) {
	base := t.TempDir()
	s := newTestSynchronizer(t, base, nil)

	_, err := s.Synchronize(context.Background(), []*plugins.Manifest{cameraPlugin(t, base), filePlugin(t, base)})
	require.NoError(t, err)

	assert.Equal(t, []string{
		".capsync-assets",
		"gradle-files/file/file.gradle",
		"src/main/assets/www/file.js",
		"src/main/java/com/example/camera/CameraPlugin.java",
		"src/main/java/org/apache/file/FileUtils.java",
		"src/main/libs/file-sdk.aar",
		"src/main/libs/helper.jar",
		"src/main/res/xml/config.xml",
	}, listFiles(t, s.Root()))

	ledger, err := os.ReadFile(filepath.Join(s.Root(), ".capsync-assets"))
	require.NoError(t, err)
	assert.Equal(t, ledgerHeader+"src/main/assets/www/file.js\n", string(ledger))
}

// TestSynchronize_PrunesRemovedPlugins tests that a smaller plugin set leaves nothing behind
func TestSynchronize_PrunesRemovedPlugins(t *testing.T) {
	base := t.TempDir()
	s := newTestSynchronizer(t, base, nil)
	camera := cameraPlugin(t, base)

	_, err := s.Synchronize(context.Background(), []*plugins.Manifest{camera, filePlugin(t, base)})
	require.NoError(t, err)

	_, err = s.Synchronize(context.Background(), []*plugins.Manifest{camera})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"src/main/java/com/example/camera/CameraPlugin.java",
		"src/main/res/xml/config.xml",
	}, listFiles(t, s.Root()))
}

// TestSynchronize_EmptySetPrunes tests that an empty active set leaves only developer files
func TestSynchronize_EmptySetPrunes(t *testing.T) {
	base := t.TempDir()
	s := newTestSynchronizer(t, base, nil)

	_, err := s.Synchronize(context.Background(), []*plugins.Manifest{filePlugin(t, base)})
	require.NoError(t, err)

	manifestPath := filepath.Join(s.Root(), "src", "main", "AndroidManifest.xml")
	require.NoError(t, os.WriteFile(manifestPath, []byte("<manifest/>"), 0644))

	report, err := s.Synchronize(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.FileCount())
	assert.Equal(t, []string{"src/main/AndroidManifest.xml"}, listFiles(t, s.Root()))
}

// TestSynchronize_MissingSourceDoesNotSkipOthers tests failure collection across plugins
func TestSynchronize_MissingSourceDoesNotSkipOthers(t *testing.T) {
	base := t.TempDir()
	s := newTestSynchronizer(t, base, nil)

	broken := &plugins.Manifest{
		ID:      "broken",
		RootDir: filepath.Join(base, "node_modules", "broken"),
		Platforms: map[string]*plugins.PlatformElements{
			"android": {SourceFiles: []plugins.SourceFile{{Src: "src/Gone.java", TargetDir: "src/gone"}}},
		},
	}

	report, err := s.Synchronize(context.Background(), []*plugins.Manifest{broken, cameraPlugin(t, base)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyncFailed)
	assert.True(t, fsutil.IsMissingSource(err))
	assert.Contains(t, err.Error(), "plugin broken")
	assert.Contains(t, err.Error(), "Gone.java")

	require.NotNil(t, report)
	assert.Equal(t, 2, report.FileCount(), "camera is still copied")
	assert.Contains(t, listFiles(t, s.Root()), "src/main/res/xml/config.xml")
}

// TestSynchronize_MalformedElementAbortsOnlyThatPlugin tests manifest errors during planning
func TestSynchronize_MalformedElementAbortsOnlyThatPlugin(t *testing.T) {
	base := t.TempDir()
	s := newTestSynchronizer(t, base, nil)

	malformed := &plugins.Manifest{
		ID:      "malformed",
		RootDir: base,
		Platforms: map[string]*plugins.PlatformElements{
			"android": {ResourceFiles: []plugins.ResourceFile{{Src: "a.xml"}}},
		},
	}

	report, err := s.Synchronize(context.Background(), []*plugins.Manifest{malformed, cameraPlugin(t, base)})
	require.Error(t, err)
	assert.True(t, plugins.IsManifestError(err))
	assert.Equal(t, 2, report.FileCount())
}

// TestSynchronize_DestinationConflict tests that overlapping plugins fail before copying
func TestSynchronize_DestinationConflict(t *testing.T) {
	base := t.TempDir()
	s := newTestSynchronizer(t, base, nil)

	a := cameraPlugin(t, base)
	b := &plugins.Manifest{
		ID:      "camera-fork",
		RootDir: a.RootDir,
		Platforms: map[string]*plugins.PlatformElements{
			"android": {ResourceFiles: []plugins.ResourceFile{{Src: "res/xml/config.xml", Target: "res/xml/config.xml"}}},
		},
	}

	_, err := s.Synchronize(context.Background(), []*plugins.Manifest{a, b})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDestinationConflict)
	assert.Contains(t, err.Error(), "src/main/res/xml/config.xml (camera, camera-fork)")
	assert.Empty(t, listFiles(t, s.Root()))
}

// TestSynchronize_Cancelled tests that a cancelled context stops before pruning
func TestSynchronize_Cancelled(t *testing.T) {
	base := t.TempDir()
	s := newTestSynchronizer(t, base, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Synchronize(ctx, []*plugins.Manifest{cameraPlugin(t, base)})
	assert.ErrorIs(t, err, context.Canceled)
}

// TestPrune_IgnoresLedgerEscapes tests that ledger entries cannot reach outside the tree
func TestPrune_IgnoresLedgerEscapes(t *testing.T) {
	base := t.TempDir()
	s := newTestSynchronizer(t, base, nil)

	outside := filepath.Join(base, "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0644))
	require.NoError(t, os.MkdirAll(s.Root(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), ".capsync-assets"),
		[]byte("../../keep.txt\n/etc/passwd\n"), 0644))

	require.NoError(t, s.Prune(context.Background()))
	assert.FileExists(t, outside)
	assert.NoFileExists(t, filepath.Join(s.Root(), ".capsync-assets"))
}

// recordingFS wraps OSFS, tracking copy concurrency and the order of operations
type recordingFS struct {
	fsutil.OSFS
	mu       sync.Mutex
	ops      []string
	inFlight int32
	peak     int32
}

func (r *recordingFS) record(op string) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}

func (r *recordingFS) CopyFile(src, dst string) error {
	n := atomic.AddInt32(&r.inFlight, 1)
	for {
		peak := atomic.LoadInt32(&r.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&r.peak, peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	defer atomic.AddInt32(&r.inFlight, -1)

	r.record("copy")
	return r.OSFS.CopyFile(src, dst)
}

func (r *recordingFS) RemoveAll(path string) error {
	r.record("remove")
	return r.OSFS.RemoveAll(path)
}

// TestSynchronize_PruneBeforeCopyAndBoundedWorkers tests ordering and the worker bound
func TestSynchronize_PruneBeforeCopyAndBoundedWorkers(t *testing.T) {
	base := t.TempDir()
	rec := &recordingFS{}
	s := NewSynchronizer(filepath.Join(base, "out"), platform.Android, rec, &Config{MaxWorkers: 2}, quietLogger())

	var active []*plugins.Manifest
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		root := writePluginFiles(t, base, id, "src/"+id+".java")
		active = append(active, &plugins.Manifest{
			ID:      id,
			RootDir: root,
			Platforms: map[string]*plugins.PlatformElements{
				"android": {SourceFiles: []plugins.SourceFile{{Src: "src/" + id + ".java", TargetDir: "src/" + id}}},
			},
		})
	}

	_, err := s.Synchronize(context.Background(), active)
	require.NoError(t, err)

	firstCopy := -1
	lastRemove := -1
	for i, op := range rec.ops {
		if op == "copy" && firstCopy < 0 {
			firstCopy = i
		}
		if op == "remove" {
			lastRemove = i
		}
	}
	assert.Less(t, lastRemove, firstCopy, "every remove happens before the first copy: %s", strings.Join(rec.ops, ","))
	assert.LessOrEqual(t, atomic.LoadInt32(&rec.peak), int32(2))
	assert.Len(t, listFiles(t, s.Root()), 6)
}

// TestSynchronize_EscapingPluginID tests that a plugin ID cannot place files outside the asset root
func TestSynchronize_EscapingPluginID(t *testing.T) {
	base := t.TempDir()
	s := newTestSynchronizer(t, base, nil)

	root := writePluginFiles(t, base, "escaped", "x.gradle")
	escaping := &plugins.Manifest{
		ID:      "../../escaped",
		RootDir: root,
		Platforms: map[string]*plugins.PlatformElements{
			"android": {Frameworks: []plugins.Framework{{Src: "x.gradle", Custom: true, Type: plugins.FrameworkGradleReference}}},
		},
	}

	_, err := s.Synchronize(context.Background(), []*plugins.Manifest{escaping})
	require.Error(t, err)
	assert.True(t, plugins.IsManifestError(err))
	assert.NoFileExists(t, filepath.Join(base, "android", "escaped", "x.gradle"))
	assert.Empty(t, listFiles(t, s.Root()))
}
