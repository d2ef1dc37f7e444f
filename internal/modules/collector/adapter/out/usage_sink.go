package out

import (
	"context"

	"quotawin/internal/modules/collector/domain"
	collectorout "quotawin/internal/modules/collector/port/out"
	usagedto "quotawin/internal/modules/usage/dto"
	usagein "quotawin/internal/modules/usage/port/in"
)

type UsageSink struct {
	usage usagein.Usecase
}

func NewUsageSink(usage usagein.Usecase) collectorout.SampleSink {
	return UsageSink{usage: usage}
}

func (s UsageSink) Import(ctx context.Context, samples []domain.Sample) (int, error) {
	in := make([]usagedto.SampleInput, 0, len(samples))
	for _, sample := range samples {
		in = append(in, usagedto.SampleInput{Timestamp: sample.Timestamp, UsagePct: sample.UsagePct, Source: sample.Source})
	}
	out, err := s.usage.ImportSamples(ctx, in)
	if err != nil {
		return 0, err
	}
	return out.Imported, nil
}
