package render

import (
	"encoding/json"

	"github.com/newrelic/nri-dmem/src/biz"
	"github.com/newrelic/nri-dmem/src/nri"
)

// human is a value rendered for people: a formatted string, null, or "unlimited".
type human biz.Value

func (h human) MarshalJSON() ([]byte, error) {
	if v := biz.Value(h); v.Available() || v.IsNoLimit() {
		return json.Marshal(FormatValue(v))
	}
	return []byte("null"), nil
}

func (h human) MarshalYAML() (interface{}, error) {
	if v := biz.Value(h); v.Available() || v.IsNoLimit() {
		return FormatValue(v), nil
	}
	return nil, nil
}

type row struct {
	Container string    `json:"container" yaml:"container"`
	ID        string    `json:"id" yaml:"id"`
	RAM       human     `json:"ram" yaml:"ram"`
	Swap      human     `json:"swap" yaml:"swap"`
	RAMBytes  biz.Value `json:"ram_bytes" yaml:"ram_bytes"`
	SwapBytes biz.Value `json:"swap_bytes" yaml:"swap_bytes"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
}

type detailedRow struct {
	row            `yaml:",inline"`
	Limit          human     `json:"limit" yaml:"limit"`
	SwapLimit      human     `json:"swaplimit" yaml:"swaplimit"`
	Anon           human     `json:"anon" yaml:"anon"`
	File           human     `json:"file" yaml:"file"`
	Shmem          human     `json:"shmem" yaml:"shmem"`
	RSS            human     `json:"rss" yaml:"rss"`
	LimitBytes     biz.Value `json:"limit_bytes" yaml:"limit_bytes"`
	SwapLimitBytes biz.Value `json:"swaplimit_bytes" yaml:"swaplimit_bytes"`
	AnonBytes      biz.Value `json:"anon_bytes" yaml:"anon_bytes"`
	FileBytes      biz.Value `json:"file_bytes" yaml:"file_bytes"`
	ShmemBytes     biz.Value `json:"shmem_bytes" yaml:"shmem_bytes"`
	RSSBytes       biz.Value `json:"rss_bytes" yaml:"rss_bytes"`
}

func newRow(s nri.Sample) row {
	r := row{
		Container: s.Container.Name,
		ID:        s.Container.DisplayID(),
		RAM:       human(s.Stats.RAM.Used),
		Swap:      human(s.Stats.Swap.Used),
		RAMBytes:  s.Stats.RAM.Used,
		SwapBytes: s.Stats.Swap.Used,
	}
	if s.Err != nil {
		r.Error = s.Err.Error()
	}
	return r
}

func newDetailedRow(s nri.Sample) detailedRow {
	st := s.Stats
	return detailedRow{
		row:            newRow(s),
		Limit:          human(st.RAM.Limit),
		SwapLimit:      human(st.Swap.Limit),
		Anon:           human(st.Detail.Anon),
		File:           human(st.Detail.File),
		Shmem:          human(st.Detail.Shmem),
		RSS:            human(st.Detail.RSS),
		LimitBytes:     st.RAM.Limit,
		SwapLimitBytes: st.Swap.Limit,
		AnonBytes:      st.Detail.Anon,
		FileBytes:      st.Detail.File,
		ShmemBytes:     st.Detail.Shmem,
		RSSBytes:       st.Detail.RSS,
	}
}

// rows builds the records shared by the json and yaml outputs.
func rows(samples []nri.Sample, details bool) interface{} {
	if details {
		out := make([]detailedRow, 0, len(samples))
		for _, s := range samples {
			out = append(out, newDetailedRow(s))
		}
		return out
	}
	out := make([]row, 0, len(samples))
	for _, s := range samples {
		out = append(out, newRow(s))
	}
	return out
}
