package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/newrelic/nri-dmem/src/biz"
	"github.com/newrelic/nri-dmem/src/nri"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiHeader = "\033[96m"
	ansiYellow = "\033[93m"
	ansiRed    = "\033[91m"

	valueWidth = 12
)

var (
	tableColumns   = []string{"RAM Used", "SWAP Used"}
	detailsColumns = []string{"Limit", "SwapLimit", "Anon", "File", "Shmem", "RSS"}
)

type tableWriter struct {
	w    io.Writer
	opts Options
}

func writeTable(w io.Writer, samples []nri.Sample, opts Options) error {
	tw := &tableWriter{w: w, opts: opts}

	columns := tableColumns
	if opts.Details {
		columns = append(append([]string{}, tableColumns...), detailsColumns...)
	}

	header := fmt.Sprintf("%-*s %-*s", nameWidth+1, "CONTAINER", valueWidth, "ID")
	for _, c := range columns {
		header += fmt.Sprintf(" %*s", valueWidth, c)
	}
	tw.println(tw.paint(ansiHeader+ansiBold, header))
	tw.println(tw.paint(ansiHeader, strings.Repeat("-", len(header))))

	for _, s := range samples {
		st := s.Stats
		line := fmt.Sprintf("%-*s %-*s %s %s", nameWidth+1, truncateName(s.Container.Name, nameWidth),
			valueWidth, s.Container.DisplayID(), tw.usage(st.RAM.Used), tw.usage(st.Swap.Used))
		if opts.Details {
			for _, v := range []biz.Value{st.RAM.Limit, st.Swap.Limit, st.Detail.Anon, st.Detail.File, st.Detail.Shmem, st.Detail.RSS} {
				line += fmt.Sprintf(" %*s", valueWidth, FormatValue(v))
			}
		}
		tw.println(line)
	}

	if opts.Details && opts.Host != nil {
		h := opts.Host
		tw.println("")
		tw.println(fmt.Sprintf("HOST RAM: %s / %s   SWAP: %s / %s",
			FormatBytes(h.RAMUsed), FormatBytes(h.RAMTotal), FormatBytes(h.SwapUsed), FormatBytes(h.SwapTotal)))
	}
	return nil
}

// usage pads the value to the column width before colouring it, so escape codes don't break the
// alignment.
func (tw *tableWriter) usage(v biz.Value) string {
	cell := fmt.Sprintf("%*s", valueWidth, FormatValue(v))
	n, ok := v.Uint64()
	switch {
	case !ok:
		return cell
	case tw.opts.Crit > 0 && n >= tw.opts.Crit:
		return tw.paint(ansiRed, cell)
	case tw.opts.Warn > 0 && n >= tw.opts.Warn:
		return tw.paint(ansiYellow, cell)
	}
	return cell
}

func (tw *tableWriter) paint(code, s string) string {
	if !tw.opts.Color {
		return s
	}
	return code + s + ansiReset
}

func (tw *tableWriter) println(s string) {
	fmt.Fprintln(tw.w, s)
}
