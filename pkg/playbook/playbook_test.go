package playbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAnsibleArgs(t *testing.T) {
	args := buildAnsibleArgs("/ansible/inventory/slm-nodes.yml", "/ansible/site.yml",
		[]string{"web-1", "web-2"}, []string{"deploy"}, map[string]string{"env": "prod"}, true)

	assert.Equal(t, []string{
		"-i", "/ansible/inventory/slm-nodes.yml", "/ansible/site.yml",
		"--limit", "web-1,web-2",
		"--tags", "deploy",
		"-e", "env=prod",
		"--check",
	}, args)
}

func TestBuildAnsibleArgsMinimal(t *testing.T) {
	args := buildAnsibleArgs("/ansible/inventory/slm-nodes.yml", "/ansible/site.yml", nil, nil, nil, false)
	assert.Equal(t, []string{"-i", "/ansible/inventory/slm-nodes.yml", "/ansible/site.yml"}, args)
}

func TestPreflightMissingPlaybook(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inventory"), []byte(""), 0o644))

	r := &Runner{ansibleDir: dir, inventoryPath: filepath.Join(dir, "inventory")}
	_, err := r.preflight("site.yml")
	assert.ErrorContains(t, err, "playbook not found")
}

func TestPreflightMissingInventory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.yml"), []byte(""), 0o644))

	r := &Runner{ansibleDir: dir, inventoryPath: filepath.Join(dir, "does-not-exist")}
	_, err := r.preflight("site.yml")
	assert.ErrorContains(t, err, "inventory not found")
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, fileExists(file))
	assert.False(t, fileExists(filepath.Join(dir, "absent")))
	assert.False(t, fileExists(dir)) // a directory is not a file
}

func TestRegisterAssignsRunningStateAndUniqueID(t *testing.T) {
	r := New(t.TempDir(), nil)

	run1 := r.register("site.yml", []string{"web-1"}, nil, nil, false)
	run2 := r.register("site.yml", []string{"web-1"}, nil, nil, false)

	assert.NotEqual(t, run1.RunID, run2.RunID)
	assert.Equal(t, "site.yml", run1.PlaybookName)

	got, ok := r.Get(run1.RunID)
	require.True(t, ok)
	assert.Equal(t, run1.RunID, got.RunID)

	_, ok = r.Get("does-not-exist")
	assert.False(t, ok)
}
</content>
