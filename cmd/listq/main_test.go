package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func writeLines(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestEventsCommand(t *testing.T) {
	t.Setenv("LISTQ_DEFAULT_LIMIT", "2")
	file := writeLines(t,
		`{"gentime":100,"seqNumber":1,"source":"Simulator","message":"Battery low","severity":"WARNING"}`,
		`{"gentime":200,"seqNumber":2,"source":"Simulator","message":"AOS","severity":"INFO"}`,
		`{"gentime":300,"seqNumber":3,"source":"Simulator","message":"Battery critical","severity":"CRITICAL"}`,
		`{"gentime":400,"seqNumber":4,"source":"Ground","message":"Pass started","severity":"INFO"}`,
	)

	out, err := run(t, "events", "--file", file)
	require.NoError(t, err)
	require.Equal(t, `[4,3]`, gjson.Get(out, "nodes.#.seqNumber").Raw)
	require.True(t, gjson.Get(out, "pageInfo.hasNextPage").Bool())
	require.False(t, gjson.Get(out, "totalCount").Exists())

	after := gjson.Get(out, "pageInfo.endCursor").String()
	require.NotEmpty(t, after)
	out, err = run(t, "events", "--file", file, "--after", after)
	require.NoError(t, err)
	require.Equal(t, `[2,1]`, gjson.Get(out, "nodes.#.seqNumber").Raw)
	require.False(t, gjson.Get(out, "pageInfo.hasNextPage").Bool())

	out, err = run(t, "events", "--file", file, "--order", "asc", "--first", "10", "-q", "battery")
	require.NoError(t, err)
	require.Equal(t, `[1,3]`, gjson.Get(out, "nodes.#.seqNumber").Raw)

	out, err = run(t, "events", "--file", file, "--severity", "warning", "--start", "100", "--stop", "300")
	require.NoError(t, err)
	require.Equal(t, `[1]`, gjson.Get(out, "nodes.#.seqNumber").Raw)

	out, err = run(t, "events", "--file", file, "--source", "Ground")
	require.NoError(t, err)
	require.Equal(t, `[4]`, gjson.Get(out, "nodes.#.seqNumber").Raw)

	_, err = run(t, "events", "--file", file, "-q", "color:red")
	require.ErrorContains(t, err, "color")

	_, err = run(t, "events")
	require.ErrorContains(t, err, "--file is required")
}

func TestParametersCommand(t *testing.T) {
	file := writeLines(t,
		`{"pid":1,"parameter":"/YSS/SIMULATOR/BatteryVoltage1","engType":"FLOAT","gids":[1]}`,
		`{"pid":2,"parameter":"/YSS/SIMULATOR/Altitude","engType":"DOUBLE","gids":[1,2]}`,
		`{"pid":3,"parameter":"/YSS/SIMULATOR/Mode","rawType":"UINT32","engType":"ENUMERATED"}`,
	)

	out, err := run(t, "parameters", "--file", file)
	require.NoError(t, err)
	require.Equal(t, `[2,1,3]`, gjson.Get(out, "nodes.#.pid").Raw)
	require.Equal(t, int64(3), gjson.Get(out, "totalCount").Int())

	out, err = run(t, "parameters", "--file", file, "-q", "gid:1", "--first", "1")
	require.NoError(t, err)
	require.Equal(t, `[2]`, gjson.Get(out, "nodes.#.pid").Raw)
	require.Equal(t, int64(2), gjson.Get(out, "totalCount").Int())

	out, err = run(t, "parameters", "--file", file, "--pos", "2")
	require.NoError(t, err)
	require.Equal(t, `[3]`, gjson.Get(out, "nodes.#.pid").Raw)

	_, err = run(t, "parameters", "--file", file, "--strict", "-q", "a b c d")
	require.ErrorContains(t, err, "exceeds limit")
}

func TestObjectsCommand(t *testing.T) {
	file := writeLines(t,
		`{"qualifiedName":"/YSS/SIMULATOR/Voltage","system":"/YSS/SIMULATOR"}`,
		`{"qualifiedName":"/YSS/SIMULATOR","system":"/YSS","container":true}`,
	)
	out, err := run(t, "objects", "--file", file)
	require.NoError(t, err)
	require.Equal(t, `["/YSS/SIMULATOR","/YSS/SIMULATOR/Voltage"]`, gjson.Get(out, "nodes.#.qualifiedName").Raw)

	_, err = run(t, "objects", "--file", writeLines(t, `{"qualifiedName":oops}`))
	require.ErrorContains(t, err, "failed to decode item 1")
}

func TestConfigFile(t *testing.T) {
	file := writeLines(t,
		`{"gentime":100,"seqNumber":1,"source":"Simulator","message":"A","severity":"INFO"}`,
		`{"gentime":200,"seqNumber":2,"source":"Simulator","message":"B","severity":"INFO"}`,
	)
	config := filepath.Join(t.TempDir(), "listq.yaml")
	require.NoError(t, os.WriteFile(config, []byte("default_limit: 1\nmax_limit: 1\n"), 0o600))

	out, err := run(t, "events", "--file", file, "--config", config, "--first", "5")
	require.NoError(t, err)
	require.Equal(t, `[2]`, gjson.Get(out, "nodes.#.seqNumber").Raw)
}
