package models

// Requests for signal HTTP endpoints. Defined in domain for consistency and reuse.

type GetSignalRequest struct {
	Symbol    string `param:"symbol" json:"symbol" validate:"required"`
	Timeframe string `query:"timeframe" json:"timeframe" default:"1h" validate:"oneof=15m 1h 4h 1d"`
}

type ListSignalsRequest struct {
	Timeframe string `query:"timeframe" json:"timeframe" default:"1h" validate:"oneof=15m 1h 4h 1d"`
}

type RefreshSignalRequest struct {
	Symbol    string `param:"symbol" json:"symbol" validate:"required"`
	Timeframe string `query:"timeframe" json:"timeframe" default:"1h" validate:"oneof=15m 1h 4h 1d"`
	Force     bool   `query:"force" json:"force"`
}
