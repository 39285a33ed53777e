//go:build integration

package integration_test

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/require"

	"github.com/SilviuMajor/total-dash-sub001/internal/dbtest/postgrestest"
)

type closeFunc func(ctx context.Context)

type infraStat struct {
	PostgresPort   nat.Port
	ConfigFilePath string
	Procdir        string
	SocketPath     string

	// Cfg holds the raw config file, overridden section by section.
	Cfg map[string]any

	closeFuncs []closeFunc
}

func initInfra(t *testing.T, exeName string) (istat infraStat) {
	t.Helper()

	// Since the config is read from the file $PWD/config.yaml,
	// we're running a process in a subdirectory so that we aren't interferring with the other tests.
	wd, err := os.Getwd()
	require.NoError(t, err, "failed to get wd")
	istat.Procdir = filepath.Join(wd, exeName+"-test")
	istat.ConfigFilePath = filepath.Join(istat.Procdir, "config.yaml")
	istat.SocketPath = filepath.Join(istat.Procdir, exeName+".sock")

	err = os.MkdirAll(istat.Procdir, fs.ModePerm)
	require.NoError(t, err, "failed to create a dir for the process")

	err = yaml.Unmarshal([]byte(validConfig), &istat.Cfg)
	require.NoError(t, err, "failed to parse config")

	istat.set("http", "address", "unix://"+istat.SocketPath)
	istat.set("grpc", "address", "127.0.0.1:0")

	return istat
}

func (istat *infraStat) set(section, key string, value any) {
	m, ok := istat.Cfg[section].(map[string]any)
	if !ok {
		m = map[string]any{}
		istat.Cfg[section] = m
	}
	m[key] = value
}

func embedded(v string) map[string]any {
	return map[string]any{"source": "embedded", "value": v}
}

// UsePostgres points the database section at a running container.
func (istat *infraStat) UsePostgres(port nat.Port) {
	istat.PostgresPort = port
	istat.set("database", "name", postgrestest.DBName)
	istat.set("database", "port", port.Port())
	istat.set("database", "host", embedded("localhost"))
	istat.set("database", "user", embedded(postgrestest.DBUser))
	istat.set("database", "password", embedded(postgrestest.DBPassword))
}

// PreparePostgres starts a migrated and seeded directory.
func (istat *infraStat) PreparePostgres(t *testing.T) {
	t.Helper()

	pgClient, pgPort, pgTerminate := postgrestest.Start(t.Context())
	pgClient.Close()

	istat.closeFuncs = append(istat.closeFuncs, pgTerminate)
	istat.UsePostgres(pgPort)
}

// PrepareConfig writes a config file for running the test into the ConfigFilePath.
func (istat *infraStat) PrepareConfig(t *testing.T) {
	t.Helper()

	data, err := yaml.Marshal(istat.Cfg)
	require.NoError(t, err, "failed to encode config")

	err = os.WriteFile(istat.ConfigFilePath, data, fs.ModePerm)
	require.NoError(t, err, "failed to write config")
}

// Command prepares the binary to run inside the process directory, logging
// into <name>.log next to the tests.
func (istat *infraStat) Command(t *testing.T, ctx context.Context, args ...string) *exec.Cmd {
	t.Helper()

	currdir, err := os.Getwd()
	require.NoError(t, err, "failed to get wd")

	cmd := exec.CommandContext(ctx, filepath.Join(currdir, binary), args...)
	cmd.Dir = istat.Procdir
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }

	cmdOutPath := filepath.Join(currdir, args[0]+".log")
	cmdOut, err := os.Create(cmdOutPath)
	require.NoError(t, err, "failed to create a log file")
	t.Cleanup(func() { cmdOut.Close() })

	cmd.Stdout = cmdOut
	cmd.Stderr = cmdOut
	t.Logf("starting an app process. Logs will be saved into %s", cmdOutPath)

	return cmd
}

func (istat *infraStat) Close(ctx context.Context) {
	os.RemoveAll(istat.Procdir)

	for _, close := range istat.closeFuncs {
		close(ctx)
	}
}
