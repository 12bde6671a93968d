package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	p := filepath.Join(t.TempDir(), "test.log")
	fout, err := os.Create(p)
	require.NoError(t, err)
	return New(fout), p
}

func TestNewAndClose(t *testing.T) {
	lgr, _ := newTestLogger(t)
	require.NoError(t, lgr.Critical("test", KV("n", 99)))
	require.NoError(t, lgr.Close())
}

func TestLevelFiltering(t *testing.T) {
	lgr, p := newTestLogger(t)
	require.NoError(t, lgr.Error("error line", KV("id", 99)))
	require.NoError(t, lgr.Warn("warn line"))
	require.NoError(t, lgr.Info("info line"))
	require.NoError(t, lgr.Debug("debug line"))
	require.NoError(t, lgr.SetLevel(OFF))
	require.NoError(t, lgr.Critical("suppressed line"))
	require.NoError(t, lgr.Close())

	bts, err := os.ReadFile(p)
	require.NoError(t, err)
	s := string(bts)
	require.Contains(t, s, "error line")
	require.Contains(t, s, `id="99"`)
	require.Contains(t, s, "warn line")
	require.Contains(t, s, "info line")
	require.NotContains(t, s, "debug line")
	require.NotContains(t, s, "suppressed line")
}

func TestAddWriterFansOut(t *testing.T) {
	lgr, _ := newTestLogger(t)
	var extras []string
	for i := 0; i < 3; i++ {
		fout, err := os.CreateTemp(t.TempDir(), "")
		require.NoError(t, err)
		require.NoError(t, lgr.AddWriter(fout))
		extras = append(extras, fout.Name())
	}
	require.NoError(t, lgr.Critical("fanned out"))
	require.NoError(t, lgr.Close())

	for _, n := range extras {
		bts, err := os.ReadFile(n)
		require.NoError(t, err)
		require.Contains(t, string(bts), "fanned out")
	}
}

func TestSetLevelStringInvalid(t *testing.T) {
	lgr, _ := newTestLogger(t)
	require.ErrorIs(t, lgr.SetLevelString("LOUD"), ErrInvalidLevel)
	require.NoError(t, lgr.SetLevelString("warn"))
	require.NoError(t, lgr.Close())
}

func TestTrimLength(t *testing.T) {
	require.Equal(t, "twelve byt", trimLength(10, "twelve bytes"))
	require.Equal(t, "short", trimLength(10, "short"))
}

func TestKVLogger(t *testing.T) {
	lgr, p := newTestLogger(t)
	kv := WithKV(lgr, KV("component", "case"))
	require.NoError(t, kv.Info("handshake complete", KV("peer_node_id", 42)))
	require.NoError(t, lgr.Close())

	bts, err := os.ReadFile(p)
	require.NoError(t, err)
	s := string(bts)
	require.True(t, strings.Contains(s, `component="case"`))
	require.True(t, strings.Contains(s, `peer_node_id="42"`))
}
