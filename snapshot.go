package main

import "context"

// Item is a reference to a source content item (a note in the vault).
type Item struct {
	Key  string `json:"key"`
	Path string `json:"path"`
	Name string `json:"name"`
}

// Cluster is a named group defined by zero or more center items.
type Cluster struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Centers []Item `json:"centers"`
}

// Member associates an item with every cluster it scores against.
// Scores are in [0,1].
type Member struct {
	Item     Item               `json:"item"`
	Clusters map[string]float64 `json:"clusters"`
}

// Snapshot is a point-in-time read of the whole cluster collection.
type Snapshot struct {
	Clusters []Cluster `json:"clusters"`
	Members  []Member  `json:"members"`
}

// ClusterSource is the external collaborator that owns cluster persistence
// and scoring. The engine only reads snapshots and issues mutations; it
// never patches its in-memory graph optimistically.
type ClusterSource interface {
	GetSnapshot(ctx context.Context) (*Snapshot, error)
	CreateCluster(ctx context.Context, centers map[string]float64) (*Cluster, error)
	AddCenters(ctx context.Context, clusterKey string, itemKeys []string) error
	RemoveCenters(ctx context.Context, clusterKey string, itemKeys []string) error
	RemoveMembers(ctx context.Context, clusterKey string, itemKeys []string) error
	RemoveClusters(ctx context.Context, clusterKeys []string) error

	// Threshold is the persisted minimum score for a link, per collection.
	Threshold() float64
	SetThreshold(t float64)
	// QueueSave persists setting changes, fire-and-forget.
	QueueSave()
}
