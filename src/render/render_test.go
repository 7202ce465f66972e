package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/dustin/go-humanize"
	"github.com/newrelic/infra-integrations-sdk/v3/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/newrelic/nri-dmem/src/biz"
	"github.com/newrelic/nri-dmem/src/nri"
	"github.com/newrelic/nri-dmem/src/raw"
)

const (
	nginxID = "3f2a9c1d8e7b6a5f11111111111111111111111111111111111111111111111a"
	redisID = "b0a9f8e7d6c5b4a3f2e1d0c9b8a7f6e5d4c3b2a1f3f2a9c1d8e7b6a5f4e3d2c1"
	goneID  = "c1d2e3f4a5b6c7d8e9f0a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2"
)

func testSamples() []nri.Sample {
	return []nri.Sample{
		{
			Container: raw.ContainerRef{ID: nginxID, Name: "nginx-proxy"},
			Stats: biz.MemoryStats{
				RAM:  biz.Usage{Used: biz.Bytes(126000000), Limit: biz.NoLimit},
				Swap: biz.Usage{Used: biz.Unavailable, Limit: biz.Unavailable},
				Detail: biz.Detail{
					Anon:  biz.Bytes(100 * humanize.MiByte),
					File:  biz.Bytes(20 * humanize.MiByte),
					Shmem: biz.Bytes(0),
				},
			},
		},
		{
			Container: raw.ContainerRef{ID: redisID, Name: "redis-cache"},
			Stats: biz.MemoryStats{
				RAM:  biz.Usage{Used: biz.Bytes(500000000), Limit: biz.Bytes(humanize.GiByte)},
				Swap: biz.Usage{Used: biz.Bytes(10000000), Limit: biz.NoLimit},
			},
		},
		{
			Container: raw.ContainerRef{ID: goneID, Name: "exited-job"},
			Err:       fmt.Errorf("%w: removed", raw.ErrStatsUnavailable),
		},
	}
}

func render(t *testing.T, opts Options, samples []nri.Sample) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, New(opts, nil).Render(&buf, samples))
	return buf.String()
}

func TestFormatBytes(t *testing.T) {
	testCases := map[uint64]string{
		0:                       "0.0 B",
		1023:                    "1023.0 B",
		1024:                    "1.0 KB",
		10000000:                "9.5 MB",
		126000000:               "120.2 MB",
		500000000:               "476.8 MB",
		2 * humanize.GiByte:     "2.0 GB",
		3 * humanize.TiByte / 2: "1.5 TB",
		2048 * humanize.PiByte:  "2048.0 PB",
	}
	for n, expected := range testCases {
		assert.Equal(t, expected, FormatBytes(n), "%d", n)
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "120.2 MB", FormatValue(biz.Bytes(126000000)))
	assert.Equal(t, "N/A", FormatValue(biz.Unavailable))
	assert.Equal(t, "unlimited", FormatValue(biz.NoLimit))
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short", truncateName("short", 30))
	long := strings.Repeat("a", 40)
	truncated := truncateName(long, 30)
	assert.Equal(t, strings.Repeat("a", 29)+"…", truncated)
}

func TestFilter(t *testing.T) {
	samples := testSamples()

	assert.Len(t, Filter(samples, ""), 3)

	filtered := Filter(samples, "NGINX")
	require.Len(t, filtered, 1)
	assert.Equal(t, "nginx-proxy", filtered[0].Container.Name)

	byID := Filter(samples, "b0a9f8e7")
	require.Len(t, byID, 1)
	assert.Equal(t, "redis-cache", byID[0].Container.Name)

	assert.Empty(t, Filter(samples, "postgres"))
}

func TestSort(t *testing.T) {
	names := func(samples []nri.Sample) []string {
		var out []string
		for _, s := range samples {
			out = append(out, s.Container.Name)
		}
		return out
	}

	samples := testSamples()
	Sort(samples, SortRAM)
	assert.Equal(t, []string{"redis-cache", "nginx-proxy", "exited-job"}, names(samples))

	Sort(samples, SortName)
	assert.Equal(t, []string{"exited-job", "nginx-proxy", "redis-cache"}, names(samples))

	Sort(samples, SortSwap)
	assert.Equal(t, []string{"redis-cache", "exited-job", "nginx-proxy"}, names(samples))
}

func TestRender_FilterAppliesToEveryFormat(t *testing.T) {
	for _, format := range []Format{FormatTable, FormatJSON, FormatCSV, FormatYAML, FormatPrometheus} {
		t.Run(string(format), func(t *testing.T) {
			out := render(t, Options{Format: format, Filter: "nginx", Details: true}, testSamples())
			assert.Contains(t, out, "nginx-proxy")
			assert.NotContains(t, out, "redis-cache")
			assert.NotContains(t, out, "exited-job")
		})
	}
}

func TestRender_Table(t *testing.T) {
	out := render(t, Options{Format: FormatTable}, testSamples())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)

	assert.Equal(t, fmt.Sprintf("%-31s %-12s %12s %12s", "CONTAINER", "ID", "RAM Used", "SWAP Used"), lines[0])
	assert.Equal(t, strings.Repeat("-", len(lines[0])), lines[1])
	assert.Equal(t, fmt.Sprintf("%-31s %-12s %12s %12s", "nginx-proxy", "3f2a9c1d8e7b", "120.2 MB", "N/A"), lines[2])
	assert.Equal(t, fmt.Sprintf("%-31s %-12s %12s %12s", "redis-cache", "b0a9f8e7d6c5", "476.8 MB", "9.5 MB"), lines[3])
	assert.Equal(t, fmt.Sprintf("%-31s %-12s %12s %12s", "exited-job", "c1d2e3f4a5b6", "N/A", "N/A"), lines[4])
	assert.NotContains(t, out, "\033[")
}

func TestRender_TableDetailsWithHost(t *testing.T) {
	host := &raw.HostMemory{RAMTotal: 8 * humanize.GiByte, RAMUsed: 2 * humanize.GiByte, SwapTotal: humanize.GiByte}
	out := render(t, Options{Format: FormatTable, Details: true, Host: host}, testSamples()[:1])

	assert.Contains(t, out, "SwapLimit")
	assert.Contains(t, out, fmt.Sprintf("%12s %12s %12s %12s %12s %12s", "unlimited", "N/A", "100.0 MB", "20.0 MB", "0.0 B", "N/A"))
	assert.Contains(t, out, "HOST RAM: 2.0 GB / 8.0 GB   SWAP: 0.0 B / 1.0 GB")
}

func TestRender_TableColors(t *testing.T) {
	opts := Options{Format: FormatTable, Color: true, Warn: 500 * humanize.MiByte, Crit: 2 * humanize.GiByte}
	samples := []nri.Sample{
		{Container: raw.ContainerRef{ID: "a", Name: "small"}, Stats: biz.MemoryStats{RAM: biz.Usage{Used: biz.Bytes(humanize.MiByte)}}},
		{Container: raw.ContainerRef{ID: "b", Name: "warn"}, Stats: biz.MemoryStats{RAM: biz.Usage{Used: biz.Bytes(600 * humanize.MiByte)}}},
		{Container: raw.ContainerRef{ID: "c", Name: "crit"}, Stats: biz.MemoryStats{RAM: biz.Usage{Used: biz.Bytes(3 * humanize.GiByte)}}},
	}

	out := render(t, opts, samples)

	assert.Contains(t, out, ansiHeader+ansiBold+"CONTAINER")
	assert.Contains(t, out, fmt.Sprintf("%s%12s%s", ansiYellow, "600.0 MB", ansiReset))
	assert.Contains(t, out, fmt.Sprintf("%s%12s%s", ansiRed, "3.0 GB", ansiReset))
	assert.Contains(t, out, fmt.Sprintf(" %12s ", "1.0 MB"))
	assert.NotContains(t, out, ansiYellow+fmt.Sprintf("%12s", "N/A"))
}

func TestRender_JSON(t *testing.T) {
	out := render(t, Options{Format: FormatJSON}, testSamples())

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)

	assert.Equal(t, "nginx-proxy", got[0]["container"])
	assert.Equal(t, "3f2a9c1d8e7b", got[0]["id"])
	assert.Equal(t, "120.2 MB", got[0]["ram"])
	assert.Nil(t, got[0]["swap"])
	assert.Equal(t, float64(126000000), got[0]["ram_bytes"])
	assert.Contains(t, got[0], "swap_bytes")
	assert.Nil(t, got[0]["swap_bytes"])
	assert.NotContains(t, got[0], "limit")
	assert.NotContains(t, got[0], "error")

	assert.Equal(t, "9.5 MB", got[1]["swap"])
	assert.Equal(t, float64(10000000), got[1]["swap_bytes"])

	assert.Nil(t, got[2]["ram"])
	assert.Contains(t, got[2]["error"], "cgroup stats unavailable")
}

func TestRender_JSONDetails(t *testing.T) {
	out := render(t, Options{Format: FormatJSON, Details: true}, testSamples()[:2])

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, "unlimited", got[0]["limit"])
	assert.Equal(t, "unlimited", got[0]["limit_bytes"])
	assert.Nil(t, got[0]["swaplimit"])
	assert.Nil(t, got[0]["swaplimit_bytes"])
	assert.Equal(t, "100.0 MB", got[0]["anon"])
	assert.Equal(t, float64(0), got[0]["shmem_bytes"])

	assert.Equal(t, "1.0 GB", got[1]["limit"])
	assert.Equal(t, float64(humanize.GiByte), got[1]["limit_bytes"])
	assert.Equal(t, "unlimited", got[1]["swaplimit"])
}

func TestRender_YAML(t *testing.T) {
	out := render(t, Options{Format: FormatYAML, Details: true}, testSamples()[:1])

	var got []map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "nginx-proxy", got[0]["container"])
	assert.Equal(t, "120.2 MB", got[0]["ram"])
	assert.Equal(t, 126000000, got[0]["ram_bytes"])
	assert.Nil(t, got[0]["swap"])
	assert.Equal(t, "unlimited", got[0]["limit"])
}

func TestRender_CSV(t *testing.T) {
	out := render(t, Options{Format: FormatCSV}, testSamples())

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"container", "id", "ram", "swap"},
		{"nginx-proxy", "3f2a9c1d8e7b", "120.2 MB", "N/A"},
		{"redis-cache", "b0a9f8e7d6c5", "476.8 MB", "9.5 MB"},
		{"exited-job", "c1d2e3f4a5b6", "N/A", "N/A"},
	}, records)
}

func TestRender_CSVDetails(t *testing.T) {
	out := render(t, Options{Format: FormatCSV, Details: true}, testSamples()[1:2])

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"container", "id", "ram", "swap", "limit", "swaplimit", "anon", "file", "shmem", "rss"}, records[0])
	assert.Equal(t, []string{"redis-cache", "b0a9f8e7d6c5", "476.8 MB", "9.5 MB", "1.0 GB", "unlimited", "N/A", "N/A", "N/A", "N/A"}, records[1])
}

func TestRender_Prometheus(t *testing.T) {
	out := render(t, Options{Format: FormatPrometheus, Version: raw.CgroupV2}, testSamples())

	assert.Contains(t, out, `dmem_cgroup_info{version="v2"} 1`)
	assert.Contains(t, out, fmt.Sprintf(`dmem_container_ram_used_bytes{id="%s",name="nginx-proxy"} 1.26e+08`, nginxID))
	assert.Contains(t, out, fmt.Sprintf(`dmem_container_ram_limit_bytes{id="%s",name="nginx-proxy"} +Inf`, nginxID))
	assert.NotContains(t, out, fmt.Sprintf(`dmem_container_swap_used_bytes{id="%s"`, nginxID))
	assert.Contains(t, out, fmt.Sprintf(`dmem_container_swap_used_bytes{id="%s",name="redis-cache"} 1e+07`, redisID))
	assert.Contains(t, out, fmt.Sprintf(`dmem_container_stats_available{id="%s",name="exited-job"} 0`, goneID))
	assert.Contains(t, out, fmt.Sprintf(`dmem_container_stats_available{id="%s",name="nginx-proxy"} 1`, nginxID))
	assert.NotContains(t, out, "memory_stat_bytes{")
}

func TestRender_NRI(t *testing.T) {
	var buf bytes.Buffer
	i, err := integration.New("test", "test-version", integration.Writer(&buf))
	require.NoError(t, err)

	r := New(Options{Format: FormatNRI, Filter: "redis", Version: raw.CgroupV1}, i)
	require.NoError(t, r.Render(&bytes.Buffer{}, testSamples()))

	assert.Contains(t, buf.String(), "ContainerMemorySample")
	assert.Contains(t, buf.String(), redisID)
	assert.NotContains(t, buf.String(), nginxID)
}

func TestRender_NRIWithoutIntegration(t *testing.T) {
	err := New(Options{Format: FormatNRI}, nil).Render(&bytes.Buffer{}, testSamples())
	assert.Error(t, err)
}

func TestRender_UnknownFormat(t *testing.T) {
	err := New(Options{Format: "xml"}, nil).Render(&bytes.Buffer{}, testSamples())
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteColumnHelp(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteColumnHelp(&buf))
	for _, c := range append(append([]string{"CONTAINER"}, tableColumns...), detailsColumns...) {
		assert.Contains(t, buf.String(), c)
	}
}
