package fileops

import (
	"archive/tar"
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveWorkspace(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.wsRoot, "deed.md", "contents of the deed")
	f.seed(t, f.wsRoot, "drafts/v2.md", "second draft")

	var buf bytes.Buffer
	require.NoError(t, f.facade.Archive(&buf))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	got := map[string]string{}
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if header.Typeflag == tar.TypeDir {
			got[header.Name] = ""
			continue
		}
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		got[header.Name] = string(data)
	}

	assert.Equal(t, "contents of the deed", got["deed.md"])
	assert.Equal(t, "second draft", got["drafts/v2.md"])
	_, hasDir := got["drafts/"]
	assert.True(t, hasDir)
}

func TestArchiveEmptyWorkspace(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	require.NoError(t, f.facade.Archive(&buf))

	gz, err := gzip.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	_, err = tar.NewReader(gz).Next()
	assert.Equal(t, io.EOF, err)
}
