package service

import (
	"math"
	"strconv"

	"snapbooth/internal/domain"
)

// FeePolicy computes the platform's cut of a gross payment. Injected into the
// settlement engine so the formula can change without touching its control
// flow.
type FeePolicy interface {
	Fee(gross int64) int64
}

// PercentFeePolicy takes a flat percentage, rounded to the nearest rupiah.
type PercentFeePolicy struct {
	Percent float64
}

func (p PercentFeePolicy) Fee(gross int64) int64 {
	return int64(math.Round(float64(gross) * p.Percent / 100))
}

// SettingReader is the slice of the settings repository the fee policy needs.
type SettingReader interface {
	Get(key string) (string, error)
}

// SettingFeePolicy reads the platform_fee_percent system setting on every
// call, falling back to the configured percentage when the setting is absent
// or unparseable. Admins can retune the fee without a restart.
type SettingFeePolicy struct {
	Settings SettingReader
	Fallback float64
}

func (p *SettingFeePolicy) Fee(gross int64) int64 {
	percent := p.Fallback
	if v, err := p.Settings.Get(domain.SettingPlatformFeePercent); err == nil {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 100 {
			percent = f
		}
	}
	return PercentFeePolicy{Percent: percent}.Fee(gross)
}
