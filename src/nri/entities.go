package nri

import (
	"github.com/newrelic/infra-integrations-sdk/v3/data/attribute"
	"github.com/newrelic/infra-integrations-sdk/v3/data/metric"
	"github.com/newrelic/infra-integrations-sdk/v3/integration"
	"github.com/newrelic/infra-integrations-sdk/v3/log"

	"github.com/newrelic/nri-dmem/src/raw"
)

const (
	attrContainerID      = "containerId"
	attrShortContainerID = "shortContainerId"
)

// Populate adds one entity per sample to the integration, each holding a ContainerMemorySample.
func Populate(i *integration.Integration, samples []Sample, version raw.CgroupVersion, details bool) error {
	for _, s := range samples {
		entity, err := i.Entity(s.Container.ID, entityNamespace)
		if err != nil {
			return err
		}

		ms := entity.NewMetricSet(containerMemorySampleName,
			attribute.Attr(attrContainerID, s.Container.ID),
			attribute.Attr(attrShortContainerID, s.Container.DisplayID()),
		)

		entries := []entry{metricCgroupVersion(version.String())}
		if s.Container.Name != "" {
			entries = append(entries, metricContainerName(s.Container.Name))
		}
		if !s.Available() {
			entries = append(entries, metricStatsAvailable(0), metricStatsError(s.Err.Error()))
			populate(ms, entries)
			continue
		}

		entries = append(entries, metricStatsAvailable(1))
		entries = append(entries, memory(&s.Stats)...)
		if details {
			entries = append(entries, detail(&s.Stats.Detail)...)
		}
		populate(ms, entries)
	}
	return nil
}

func populate(ms *metric.Set, metrics []entry) {
	for _, m := range metrics {
		if err := ms.SetMetric(m.Name, m.Value, m.Type); err != nil {
			log.Warn("Unexpected error setting metric %v: %v", m, err)
		}
	}
}
