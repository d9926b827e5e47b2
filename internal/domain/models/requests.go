package models

// Requests for report HTTP endpoints. Dates are YYYY-MM-DD. A zero window or
// day count takes the engine's configured value.

type FactorPerformanceRequest struct {
	AsOf   string `query:"as_of" json:"as_of" validate:"omitempty,datetime=2006-01-02"`
	Window int    `query:"window" json:"window" validate:"omitempty,gte=1,lte=3650"`
}

type DateRangeRequest struct {
	From string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type WeeklyRequest struct {
	AsOf string `query:"as_of" json:"as_of" validate:"omitempty,datetime=2006-01-02"`
	Days int    `query:"days" json:"days" validate:"omitempty,gte=7,lte=3650"`
}

type CycleRequest struct {
	From string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type BacktestRequest struct {
	AsOf string `query:"as_of" json:"as_of" validate:"omitempty,datetime=2006-01-02"`
}
