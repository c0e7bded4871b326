package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/ankiflow/internal/common"
	"github.com/Veraticus/ankiflow/internal/config"
	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)
	return cfg
}

func TestReadLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "unix", content: "a\nb\n", want: []string{"a", "b"}},
		{name: "windows", content: "a\r\n\r\nb", want: []string{"a", "", "b"}},
		{name: "byte order mark", content: "\ufeffばらまき spend\n", want: []string{"ばらまき spend"}},
		{name: "empty", content: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readLines(writeFile(t, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := readLines(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestParseOnDuplicate(t *testing.T) {
	kind, err := parseOnDuplicate("skip", true)
	require.NoError(t, err)
	assert.Empty(t, kind)

	kind, err = parseOnDuplicate("merge", true)
	require.NoError(t, err)
	assert.Equal(t, model.ActionMerge, kind)

	kind, err = parseOnDuplicate("reschedule", true)
	require.NoError(t, err)
	assert.Equal(t, model.ActionReschedule, kind)

	for _, bad := range []string{"defer", "dismiss", "nuke"} {
		_, err = parseOnDuplicate(bad, true)
		assert.Error(t, err, bad)
	}

	_, err = parseOnDuplicate("merge", false)
	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)
}

func TestSelectProfiles(t *testing.T) {
	cfg := testConfig(t)

	all, err := selectProfiles(cfg, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, model.ProfilePassive, all[0].ID)

	one, err := selectProfiles(cfg, "Active")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "Japanese::Active", one[0].DeckName)

	_, err = selectProfiles(cfg, "both")
	assert.Error(t, err)
}

func TestInputFiles(t *testing.T) {
	cfg := testConfig(t)
	cfg.Import.PassiveFile = "/tmp/passive.txt"

	files, err := inputFiles(cfg, cfg.Profiles()[:1])
	require.NoError(t, err)
	assert.Equal(t, "/tmp/passive.txt", files[model.ProfilePassive])

	_, err = inputFiles(cfg, cfg.Profiles())
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestPreviewCommand(t *testing.T) {
	t.Cleanup(viper.Reset)
	path := writeFile(t, "ばらまきspending (money) recklessly\nhello world\n")

	cmd := previewCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--profile", "passive"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "ばらまき")
	assert.Contains(t, out.String(), "hello world")
}

func TestPingCommand(t *testing.T) {
	t.Cleanup(viper.Reset)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": 6, "error": null}`))
	}))
	defer server.Close()
	viper.Set("anki.url", server.URL)

	cmd := pingCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "AnkiConnect 6")
}

func TestPingCommand_Unreachable(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("anki.url", "http://127.0.0.1:1")
	viper.Set("anki.retry_attempts", 1)

	cmd := pingCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)
	err := cmd.Execute()
	require.Error(t, err)

	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "Ensure Anki is running")
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}
