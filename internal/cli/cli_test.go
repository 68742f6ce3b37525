package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"gigfinder/internal/config"
	"gigfinder/internal/entity"
	"gigfinder/internal/generator"
	"gigfinder/internal/secrets"
)

type memStore map[string]string

func (m memStore) Get(service, user string) (string, error) {
	v, ok := m[service+"/"+user]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}

func (m memStore) Set(service, user, pw string) error {
	m[service+"/"+user] = pw
	return nil
}

func (m memStore) Delete(service, user string) error {
	delete(m, service+"/"+user)
	return nil
}

func useEnv(t *testing.T, dataDir string) {
	t.Helper()
	for _, k := range []string{"GIGFINDER_ADDR", "REDIS_URL", "POSTGRES_DSN", "SQLITE_PATH",
		"GEMINI_MODEL", "GEMINI_BURST", "WORK_DURATION", "DEMAND_REFRESH", secrets.APIKeyEnv} {
		t.Setenv(k, "")
	}
	t.Setenv("GIGFINDER_DATA_DIR", dataDir)
	t.Setenv("HISTORY_BACKEND", "file")
	t.Setenv("GENERATOR", "local")
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := BuildCLI()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHistoryCmd_JSON(t *testing.T) {
	dir := t.TempDir()
	useEnv(t, dir)

	jobs := []entity.Job{{
		ID: "1-Tourism-Assistant", Title: "Tourism Assistant", Company: "Gorge Cruises",
		Location: "Katherine, NT", Description: "Greet guests.", PayRate: 150, PayType: entity.PayFlat,
	}}
	raw, _ := json.Marshal(jobs)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gigfinder-job-history.json"), raw, 0o644))

	out, err := run(t, "", "history", "--json")
	require.NoError(t, err)

	var got []entity.Job
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, jobs, got)
}

func TestHistoryCmd_EmptyTable(t *testing.T) {
	useEnv(t, t.TempDir())

	out, err := run(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No jobs accepted yet.")
}

func TestHistoryCmd_InvalidBackend(t *testing.T) {
	useEnv(t, t.TempDir())
	t.Setenv("HISTORY_BACKEND", "floppy")

	_, err := run(t, "", "history")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestDemandCmd_Local(t *testing.T) {
	useEnv(t, t.TempDir())

	out, err := run(t, "", "demand")
	require.NoError(t, err)
	for _, loc := range entity.DemandLocations {
		assert.Contains(t, out, loc)
	}
}

func TestSecretsSetKey_FromStdin(t *testing.T) {
	prev := keyStore
	store := memStore{}
	keyStore = store
	t.Cleanup(func() { keyStore = prev })
	useEnv(t, t.TempDir())

	out, err := run(t, "abc123\n", "secrets", "set-key")
	require.NoError(t, err)
	assert.Contains(t, out, "saved")

	key, err := secrets.APIKey(store)
	require.NoError(t, err)
	assert.Equal(t, "abc123", key)
}

func TestNewGenerator_Selection(t *testing.T) {
	t.Setenv(secrets.APIKeyEnv, "")
	cfg := config.Default()

	gen, kind, err := newGenerator(cfg, memStore{})
	require.NoError(t, err)
	assert.Equal(t, config.GeneratorLocal, kind)
	assert.IsType(t, &generator.Local{}, gen)

	cfg.Generator.Kind = config.GeneratorGemini
	_, _, err = newGenerator(cfg, memStore{})
	assert.ErrorIs(t, err, secrets.ErrNoAPIKey)

	t.Setenv(secrets.APIKeyEnv, "k")
	gen, kind, err = newGenerator(cfg, memStore{})
	require.NoError(t, err)
	assert.Equal(t, config.GeneratorGemini, kind)
	assert.IsType(t, &generator.Gemini{}, gen)
}

func TestOpenHistory_SQLite(t *testing.T) {
	cfg := config.Default()
	cfg.History.Backend = config.BackendSQLite
	cfg.DataDir = t.TempDir()

	repo, closeRepo, err := openHistory(context.Background(), cfg)
	require.NoError(t, err)
	defer closeRepo()

	require.NoError(t, repo.Save(context.Background(), []byte(`[]`)))
	raw, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}
