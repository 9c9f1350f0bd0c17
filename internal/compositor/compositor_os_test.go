package compositor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/stratum/internal/fsops"
)

// newDiskEnv creates profiles and staging directories on the real
// filesystem, where symlinks and permission bits behave as in production.
func newDiskEnv(t *testing.T) (profiles, staging string, c *Compositor) {
	t.Helper()

	root := t.TempDir()
	profiles = filepath.Join(root, "profiles")
	staging = filepath.Join(root, "staging")
	require.NoError(t, os.MkdirAll(profiles, 0755))
	require.NoError(t, os.MkdirAll(staging, 0755))
	return profiles, staging, New(fsops.NewRealFS())
}

func writeDisk(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	// WriteFile is subject to umask.
	require.NoError(t, os.Chmod(path, perm))
}

func symlink(t *testing.T, target, link string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0755))
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
}

func diskLayer(profiles, name string) Layer {
	return Layer{Profile: name, Root: filepath.Join(profiles, name), Kind: KindMain}
}

func TestApplyLayer_Disk_LinkedFileContributesContent(t *testing.T) {
	profiles, staging, c := newDiskEnv(t)
	shared := filepath.Join(filepath.Dir(profiles), "shared", "aliases")
	writeDisk(t, shared, "alias ll='ls -l'\n", 0644)
	symlink(t, shared, filepath.Join(profiles, "base", ".aliases"))
	writeDisk(t, filepath.Join(profiles, "child", ".aliases"), "alias g=git\n", 0644)

	require.NoError(t, c.Compose(staging, []Layer{diskLayer(profiles, "base"), diskLayer(profiles, "child")}))

	info, err := os.Lstat(filepath.Join(staging, ".aliases"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular(), "staged path should be a regular file, got %v", info.Mode())

	data, err := os.ReadFile(filepath.Join(staging, ".aliases"))
	require.NoError(t, err)
	assert.Equal(t, "alias ll='ls -l'\nalias g=git\n", string(data))
}

func TestApplyLayer_Disk_LinkedDirectoryIsNotDescended(t *testing.T) {
	profiles, staging, c := newDiskEnv(t)
	writeDisk(t, filepath.Join(profiles, "base", "cfg", "rc"), "base\n", 0644)
	// A link back up the tree would recurse forever if followed.
	symlink(t, "..", filepath.Join(profiles, "base", "cfg", "up"))

	outside := filepath.Join(filepath.Dir(profiles), "elsewhere")
	writeDisk(t, filepath.Join(outside, "secret"), "do not stage\n", 0600)
	symlink(t, outside, filepath.Join(profiles, "base", "linked"))

	require.NoError(t, c.ApplyLayer(staging, diskLayer(profiles, "base")))

	data, err := os.ReadFile(filepath.Join(staging, "cfg", "rc"))
	require.NoError(t, err)
	assert.Equal(t, "base\n", string(data))

	for _, rel := range []string{"cfg/up", "linked"} {
		info, err := os.Lstat(filepath.Join(staging, filepath.FromSlash(rel)))
		require.NoError(t, err, rel)
		assert.True(t, info.IsDir(), "%s should be staged as a directory", rel)

		entries, err := os.ReadDir(filepath.Join(staging, filepath.FromSlash(rel)))
		require.NoError(t, err)
		assert.Empty(t, entries, "%s should not be descended into", rel)
	}
}

func TestApplyLayer_Disk_LinkedDirectoryConflictsWithFile(t *testing.T) {
	profiles, staging, c := newDiskEnv(t)
	target := filepath.Join(filepath.Dir(profiles), "nvim")
	require.NoError(t, os.MkdirAll(target, 0755))
	symlink(t, target, filepath.Join(profiles, "base", "nvim"))
	writeDisk(t, filepath.Join(profiles, "child", "nvim"), "file\n", 0644)

	err := c.Compose(staging, []Layer{diskLayer(profiles, "base"), diskLayer(profiles, "child")})

	var conflict *PathConflictError
	require.True(t, errors.As(err, &conflict), "expected PathConflictError, got %v", err)
	assert.Equal(t, "file", conflict.Expected)
	assert.Equal(t, "directory", conflict.Found)
}

func TestCompose_Disk_ReadOnlyFileInTwoLayers(t *testing.T) {
	profiles, staging, c := newDiskEnv(t)
	writeDisk(t, filepath.Join(profiles, "base", "rc"), "base\n", 0444)
	writeDisk(t, filepath.Join(profiles, "child", "rc"), "child\n", 0444)

	require.NoError(t, c.Compose(staging, []Layer{diskLayer(profiles, "base"), diskLayer(profiles, "child")}))

	target := filepath.Join(staging, "rc")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "base\nchild\n", string(data))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0200, "staged file must stay owner-writable, got %v", info.Mode())
}
