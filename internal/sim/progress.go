package sim

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/san-kum/urdfsim/internal/dynamo"
)

// Progress is an Observer that logs a line each time the run passes another
// 1/reports of its time span, starting with the first sample.
type Progress struct {
	logger   zerolog.Logger
	start    float64
	span     float64
	reports  int
	reported int
}

func NewProgress(logger zerolog.Logger, start, end float64, reports int) *Progress {
	if reports < 1 {
		reports = 1
	}
	return &Progress{
		logger:  logger,
		start:   start,
		span:    end - start,
		reports: reports,
	}
}

func (p *Progress) OnSample(x dynamo.State, t float64) {
	if t <= p.start {
		p.reported = 0
	}

	frac := 1.0
	if p.span > 0 {
		frac = (t - p.start) / p.span
	}
	const slack = 1e-9
	if frac+slack < p.threshold() {
		return
	}
	for p.reported <= p.reports && p.threshold() <= frac+slack {
		p.reported++
	}

	ev := p.logger.Info().
		Float64("t", t).
		Int("percent", int(math.Round(frac*100)))
	if len(x) >= 6 {
		ev = ev.Float64("speed", x[3:6].Norm())
	}
	ev.Msg("progress")
}

func (p *Progress) threshold() float64 {
	return float64(p.reported) / float64(p.reports)
}
