package models

const StorageVersion = 1

// Storage is the on-disk snapshot envelope of the in-memory profile store.
type Storage struct {
	Version  int                        `json:"version"`
	Profiles map[string]*ProfileMetrics `json:"profiles"`
}
