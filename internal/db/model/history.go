package model

import "time"

const HistoryCollection = "hashrate_history"

// HistoryPointDocument is one control-tick sample of fleet hashrate.
// The full measured hashrate is credited to the bucket of whichever mode
// was active when the sample was taken, so P2PoolHR + XvbHR == TotalHR.
type HistoryPointDocument struct {
	Timestamp time.Time `bson:"timestamp"`
	TotalHR   float64   `bson:"total_hr"`
	P2PoolHR  float64   `bson:"p2pool_hr"`
	XvbHR     float64   `bson:"xvb_hr"`
}
