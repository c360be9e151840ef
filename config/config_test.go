package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pools:
  segment_units: 64
  free_to_tail: true
gc:
  high_water: 1048576
  memory_limit: 8388608
  checked: true
eval:
  tick_limit: 100000
  stack_limit: 512
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	opts := cfg.Options()
	require.Equal(t, 64, opts.Heap.SegmentUnits)
	require.True(t, opts.Heap.FreeToTail)
	require.EqualValues(t, 1048576, opts.Heap.HighWater)
	require.EqualValues(t, 8388608, opts.Heap.MemoryLimit)
	require.True(t, opts.Heap.Checked)
	require.EqualValues(t, 100000, opts.TickLimit)
	require.Equal(t, 512, opts.StackLimit)
}

func TestLoadPartialFileKeepsZeroDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.yaml")
	require.NoError(t, os.WriteFile(path, []byte("eval:\n  tick_limit: 7\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.EqualValues(t, 7, cfg.Eval.TickLimit)
	require.Zero(t, cfg.Pools.SegmentUnits)
	require.False(t, cfg.GC.Checked)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pools: [not a map"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
