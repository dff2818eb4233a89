package models

// FlagCode identifies a data-quality condition. Flags mark values that were
// substituted or approximated rather than read from source data.
type FlagCode string

const (
	FlagSyntheticShares     FlagCode = "SYNTHETIC_SHARES"
	FlagPrefixTickerMatch   FlagCode = "PREFIX_TICKER_MATCH"
	FlagNoYearlyPeriod      FlagCode = "NO_YEARLY_PERIOD"
	FlagDefaultCostOfDebt   FlagCode = "DEFAULT_COST_OF_DEBT"
	FlagStatutoryTaxRate    FlagCode = "STATUTORY_TAX_RATE"
	FlagDefaultBeta         FlagCode = "DEFAULT_BETA"
	FlagMissingPrice        FlagCode = "MISSING_PRICE"
	FlagDegenerateMethod    FlagCode = "DEGENERATE_METHOD"
	FlagPlaceholderMultiple FlagCode = "PLACEHOLDER_MULTIPLE"
	FlagUnusableConsensus   FlagCode = "UNUSABLE_CONSENSUS"
)

// DataQualityFlag is a caller-visible warning attached to a snapshot or a
// valuation.
type DataQualityFlag struct {
	Code    FlagCode `json:"code"`
	Field   string   `json:"field,omitempty"`
	Message string   `json:"message"`
}
