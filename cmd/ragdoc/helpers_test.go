package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/ragdoc"
	main "github.com/fwojciec/ragdoc/cmd/ragdoc"
	"github.com/stretchr/testify/require"
)

// newDeps returns dependencies writing to fresh buffers.
func newDeps() (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:      context.Background(),
		Stdout:   stdout,
		Stderr:   stderr,
		Sections: ragdoc.DefaultSectionConfig(),
	}, stdout, stderr
}

// writeJSONL writes one JSON document per line to path.
func writeJSONL(t *testing.T, path string, values ...any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, v := range values {
		require.NoError(t, enc.Encode(v))
	}
}
