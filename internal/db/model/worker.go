package model

import "time"

const WorkersCollection = "workers"

// WorkerDocument is one known mining worker. Workers are upserted whenever
// telemetry observes them and expire after the worker retention window, but
// a worker that momentarily stops reporting stats is still switchable.
type WorkerDocument struct {
	Name     string    `bson:"_id"`
	IP       string    `bson:"ip"`
	LastSeen time.Time `bson:"last_seen"`
}
