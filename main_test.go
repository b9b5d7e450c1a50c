package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeImage stores a big-endian object image and returns its path.
func writeImage(t *testing.T, origin uint16, words ...uint16) string {
	buf := []byte{byte(origin >> 8), byte(origin)}
	for _, w := range words {
		buf = append(buf, byte(w>>8), byte(w))
	}
	path := filepath.Join(t.TempDir(), "image.obj")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func doRun(t *testing.T, args ...string) (code int, stdout, stderr string) {
	in, w, err := os.Pipe()
	require.NoError(t, err)
	defer in.Close()
	defer w.Close()

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	code = run(args, in, out, errOut)
	return code, out.String(), errOut.String()
}

func TestRunHalt(t *testing.T) {
	assert := assert.New(t)

	// LEA R0, MSG; PUTS; HALT; MSG "HI"
	image := writeImage(t, 0x3000, 0xE002, 0xF022, 0xF025, 'H', 'I', 0)

	code, stdout, _ := doRun(t, image)
	assert.Equal(0, code)
	assert.Equal("HI\nHALT\n", stdout)
}

func TestRunDump(t *testing.T) {
	assert := assert.New(t)

	image := writeImage(t, 0x3000, 0x1025, 0xF025) // ADD R0, R0, #5; HALT

	code, _, stderr := doRun(t, "-dump", image)
	assert.Equal(0, code)
	assert.Contains(stderr, "Snapshot")
	assert.Contains(stderr, "PC")
}

func TestRunUnimplementedOpcode(t *testing.T) {
	assert := assert.New(t)

	image := writeImage(t, 0x3000, 0x8000, 0xF025) // RTI; HALT

	code, stdout, stderr := doRun(t, image)
	assert.Equal(1, code)
	assert.NotContains(stdout, "HALT")
	assert.Contains(stderr, "abort")
	assert.Contains(stderr, "RTI")
}

func TestRunLoadErrors(t *testing.T) {
	assert := assert.New(t)

	missing := filepath.Join(t.TempDir(), "missing.obj")
	code, stdout, stderr := doRun(t, missing)
	assert.Equal(1, code)
	assert.Empty(stdout)
	assert.Contains(stderr, "missing.obj")

	short := filepath.Join(t.TempDir(), "short.obj")
	require.NoError(t, os.WriteFile(short, []byte{0x30}, 0o644))
	code, _, _ = doRun(t, short)
	assert.Equal(1, code)
}

func TestRunUsage(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		args []string
	}){
		{"no images", nil},
		{"unknown flag", []string{"-nope", "x.obj"}},
		{"negative poll", []string{"-poll", "-1s", "x.obj"}},
	}

	for _, entry := range table {
		code, stdout, stderr := doRun(t, entry.args...)
		assert.Equal(2, code, entry.name)
		assert.Empty(stdout, entry.name)
		assert.NotEmpty(stderr, entry.name)
	}
}
