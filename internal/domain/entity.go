package domain

import (
	"time"

	"backtest_go/pkg/quant"
)

// Profile is a named engine configuration preset
type Profile struct {
	Name         string    `gorm:"primaryKey" json:"name"`
	MakerFeeBps  float64   `json:"maker_fee_bps"`
	TakerFeeBps  float64   `json:"taker_fee_bps"`
	SpreadBps    float64   `json:"spread_bps"`
	InitialCash  float64   `json:"initial_cash"`
	TickSize     float64   `json:"tick_size"`
	BookCapacity int       `json:"book_capacity"`
	FeeMode      string    `json:"fee_mode"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewProfile captures cfg under name.
func NewProfile(name string, cfg Config) *Profile {
	return &Profile{
		Name:         name,
		MakerFeeBps:  float64(cfg.MakerFeeBps),
		TakerFeeBps:  float64(cfg.TakerFeeBps),
		SpreadBps:    float64(cfg.SpreadBps),
		InitialCash:  cfg.InitialCash,
		TickSize:     cfg.TickSize,
		BookCapacity: cfg.BookCapacity,
		FeeMode:      string(cfg.FeeMode),
	}
}

// EngineConfig converts the profile back to an engine configuration.
func (p *Profile) EngineConfig() Config {
	return Config{
		MakerFeeBps:  quant.Bps(p.MakerFeeBps),
		TakerFeeBps:  quant.Bps(p.TakerFeeBps),
		SpreadBps:    quant.Bps(p.SpreadBps),
		InitialCash:  p.InitialCash,
		TickSize:     p.TickSize,
		BookCapacity: p.BookCapacity,
		FeeMode:      FeeMode(p.FeeMode),
	}
}
