package services

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	AtRiskThresholdMinutes   = 30
	CriticalThresholdMinutes = 15

	waveAtRiskHours = 2
)

type SLABucket string

const (
	SLAOnTrack  SLABucket = "ON_TRACK"
	SLAAtRisk   SLABucket = "AT_RISK"
	SLABreached SLABucket = "BREACHED"
)

type WaveSLABucket string

const (
	WaveOnTime   WaveSLABucket = "on_time"
	WaveAtRisk   WaveSLABucket = "at_risk"
	WaveBreached WaveSLABucket = "breached"
)

type SLAAssessment struct {
	RemainingMinutes int
	Bucket           SLABucket
	Critical         bool
}

type WaveSLAAssessment struct {
	RemainingHours float64
	Bucket         WaveSLABucket
}

// SLASummary counts deadlines per bucket. Percentages are zero for an empty set.
type SLASummary struct {
	Total       int     `json:"total"`
	OnTrack     int     `json:"onTrack"`
	AtRisk      int     `json:"atRisk"`
	Critical    int     `json:"critical"`
	Breached    int     `json:"breached"`
	OnTrackPct  float64 `json:"onTrackPercentage"`
	AtRiskPct   float64 `json:"atRiskPercentage"`
	BreachedPct float64 `json:"breachedPercentage"`
}

// SLATracker evaluates deadlines at query time. It keeps no state.
type SLATracker struct{}

func NewSLATracker() SLATracker {
	return SLATracker{}
}

// RemainingMinutes rounds half up, so 29.5 minutes count as 30.
func (SLATracker) RemainingMinutes(deadline, now time.Time) int {
	ms := float64(deadline.Sub(now).Milliseconds())
	return int(math.Floor(ms/60000 + 0.5))
}

// Assess buckets a packing job or handover deadline.
func (t SLATracker) Assess(deadline, now time.Time) SLAAssessment {
	remaining := t.RemainingMinutes(deadline, now)
	switch {
	case remaining <= 0:
		return SLAAssessment{RemainingMinutes: remaining, Bucket: SLABreached}
	case remaining <= AtRiskThresholdMinutes:
		return SLAAssessment{
			RemainingMinutes: remaining,
			Bucket:           SLAAtRisk,
			Critical:         remaining <= CriticalThresholdMinutes,
		}
	default:
		return SLAAssessment{RemainingMinutes: remaining, Bucket: SLAOnTrack}
	}
}

// AssessWave buckets a wave deadline at hour granularity.
func (SLATracker) AssessWave(deadline, now time.Time) WaveSLAAssessment {
	hours := deadline.Sub(now).Hours()
	switch {
	case hours < 0:
		return WaveSLAAssessment{RemainingHours: hours, Bucket: WaveBreached}
	case hours < waveAtRiskHours:
		return WaveSLAAssessment{RemainingHours: hours, Bucket: WaveAtRisk}
	default:
		return WaveSLAAssessment{RemainingHours: hours, Bucket: WaveOnTime}
	}
}

func (t SLATracker) Summarize(deadlines []time.Time, now time.Time) SLASummary {
	s := SLASummary{Total: len(deadlines)}
	for _, d := range deadlines {
		a := t.Assess(d, now)
		switch a.Bucket {
		case SLABreached:
			s.Breached++
		case SLAAtRisk:
			s.AtRisk++
			if a.Critical {
				s.Critical++
			}
		case SLAOnTrack:
			s.OnTrack++
		}
	}
	s.OnTrackPct = Percentage(s.OnTrack, s.Total)
	s.AtRiskPct = Percentage(s.AtRisk, s.Total)
	s.BreachedPct = Percentage(s.Breached, s.Total)
	return s
}

func (t SLATracker) SummarizeWaves(deadlines []time.Time, now time.Time) SLASummary {
	s := SLASummary{Total: len(deadlines)}
	for _, d := range deadlines {
		switch t.AssessWave(d, now).Bucket {
		case WaveBreached:
			s.Breached++
		case WaveAtRisk:
			s.AtRisk++
		case WaveOnTime:
			s.OnTrack++
		}
	}
	s.OnTrackPct = Percentage(s.OnTrack, s.Total)
	s.AtRiskPct = Percentage(s.AtRisk, s.Total)
	s.BreachedPct = Percentage(s.Breached, s.Total)
	return s
}

// Percentage returns part/total*100 rounded to two decimals, or 0 when total is 0.
func Percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Div(decimal.NewFromInt(int64(total))).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}
