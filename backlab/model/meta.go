package model

// McapBucket is one selectable market-cap range.
type McapBucket struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// UniverseMeta is served by the universe metadata endpoint and used to
// populate the filter options at form initialization.
type UniverseMeta struct {
	Sectors     []string     `json:"sectors"`
	McapBuckets []McapBucket `json:"mcap_buckets"`
}

// APIError is the error payload the backtest service returns on
// failure. Detail is surfaced to the user verbatim.
type APIError struct {
	Detail string `json:"detail"`
}
