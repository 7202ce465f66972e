package render

import (
	"fmt"
	"io"

	"github.com/newrelic/infra-integrations-sdk/v3/integration"

	"github.com/newrelic/nri-dmem/src/nri"
)

// Renderer writes the samples of a run.
type Renderer struct {
	opts Options
	// integration receives the entities of the nri format and writes its own payload.
	integration *integration.Integration
}

// New returns a Renderer. The integration is only used by the nri format and may be nil otherwise.
func New(opts Options, i *integration.Integration) *Renderer {
	return &Renderer{opts: opts, integration: i}
}

// Render filters and sorts the samples, then writes them in the configured format.
func (r *Renderer) Render(w io.Writer, samples []nri.Sample) error {
	samples = Filter(samples, r.opts.Filter)
	sorted := make([]nri.Sample, len(samples))
	copy(sorted, samples)
	Sort(sorted, r.opts.SortBy)

	switch r.opts.Format {
	case FormatTable, "":
		return writeTable(w, sorted, r.opts)
	case FormatJSON:
		return writeJSON(w, sorted, r.opts)
	case FormatCSV:
		return writeCSV(w, sorted, r.opts)
	case FormatYAML:
		return writeYAML(w, sorted, r.opts)
	case FormatPrometheus:
		return writePrometheus(w, sorted, r.opts)
	case FormatNRI:
		if r.integration == nil {
			return fmt.Errorf("the %s format needs an integration", FormatNRI)
		}
		if err := nri.Populate(r.integration, sorted, r.opts.Version, r.opts.Details); err != nil {
			return err
		}
		return r.integration.Publish()
	}
	return fmt.Errorf("unknown output format %q", r.opts.Format)
}
