package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testConfig = `
[Global]
Listen-Addr=:5540
Max-Sessions=32
Mrp-Initial-Backoff-Ms=400
Mrp-Max-Retries=6
Rx-Buf-Bytes=2097152

[Fabric]
Store-Path=/var/lib/matterd/fabrics

[Log]
Level=DEBUG
File-Path=/var/log/matterd.log
`

func dropConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "matterd.conf")
	require.NoError(t, os.WriteFile(p, []byte(content), 0640))
	return p
}

func TestLoadParsesAllSections(t *testing.T) {
	cfg, err := Load(dropConfig(t, testConfig))
	require.NoError(t, err)
	require.Equal(t, ":5540", cfg.Global.Listen_Addr)
	require.Equal(t, 32, cfg.Global.Max_Sessions)
	require.Equal(t, 400*1000*1000, int(cfg.MrpInitialBackoff()))
	require.Equal(t, 6, cfg.Global.Mrp_Max_Retries)
	require.Equal(t, 2097152, cfg.Global.Rx_Buf_Bytes)
	require.Equal(t, "/var/lib/matterd/fabrics", cfg.Fabric.Store_Path)
	require.Equal(t, "DEBUG", cfg.Log.Level)
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(dropConfig(t, "[Global]\nListen-Addr=:5540\n"))
	require.NoError(t, err)
	require.Equal(t, 16, cfg.Global.Max_Sessions)
	require.Equal(t, 300, cfg.Global.Mrp_Initial_Backoff_Ms)
	require.Equal(t, 3, cfg.Global.Mrp_Max_Retries)
	require.Equal(t, "INFO", cfg.Log.Level)
}

func TestLoadRejectsMissingListenAddr(t *testing.T) {
	_, err := Load(dropConfig(t, "[Global]\nMax-Sessions=4\n"))
	require.ErrorIs(t, err, ErrMissingListenAddr)
}

func TestLoadRejectsNonPositiveMaxSessions(t *testing.T) {
	_, err := Load(dropConfig(t, "[Global]\nListen-Addr=:1\nMax-Sessions=0\n"))
	require.ErrorIs(t, err, ErrInvalidMaxSessions)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.conf"))
	require.Error(t, err)
}
