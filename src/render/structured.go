package render

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/newrelic/nri-dmem/src/nri"
)

func writeJSON(w io.Writer, samples []nri.Sample, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows(samples, opts.Details))
}

func writeYAML(w io.Writer, samples []nri.Sample, opts Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rows(samples, opts.Details)); err != nil {
		return err
	}
	return enc.Close()
}

var (
	csvHeader        = []string{"container", "id", "ram", "swap"}
	csvDetailsHeader = []string{"limit", "swaplimit", "anon", "file", "shmem", "rss"}
)

func writeCSV(w io.Writer, samples []nri.Sample, opts Options) error {
	cw := csv.NewWriter(w)

	header := csvHeader
	if opts.Details {
		header = append(append([]string{}, csvHeader...), csvDetailsHeader...)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, s := range samples {
		st := s.Stats
		record := []string{s.Container.Name, s.Container.DisplayID(), FormatValue(st.RAM.Used), FormatValue(st.Swap.Used)}
		if opts.Details {
			record = append(record,
				FormatValue(st.RAM.Limit),
				FormatValue(st.Swap.Limit),
				FormatValue(st.Detail.Anon),
				FormatValue(st.Detail.File),
				FormatValue(st.Detail.Shmem),
				FormatValue(st.Detail.RSS),
			)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
