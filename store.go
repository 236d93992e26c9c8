package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const saveDebounce = 500 * time.Millisecond

// vaultFile is the on-disk shape of a collection. Membership scores are not
// persisted; they are recomputed from the centers on every snapshot so the
// file stays small and mutations stay cheap.
type vaultFile struct {
	Threshold float64        `json:"threshold"`
	Items     []Item         `json:"items"`
	Clusters  []vaultCluster `json:"clusters"`
}

type vaultCluster struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Centers []string `json:"centers"`
	// Removed lists items explicitly ungrouped from this cluster; they
	// score zero regardless of similarity.
	Removed []string `json:"removed,omitempty"`
}

func (vc vaultCluster) clone() vaultCluster {
	vc.Centers = append([]string(nil), vc.Centers...)
	vc.Removed = append([]string(nil), vc.Removed...)
	return vc
}

// VaultStore is the standalone ClusterSource: a JSON vault file with
// token-overlap scoring. A real deployment would swap in an embedding-backed
// source behind the same interface.
type VaultStore struct {
	mu     sync.Mutex
	path   string
	data   vaultFile
	logger *slog.Logger

	saveTimer *time.Timer
}

// OpenVault loads (or initializes) a vault file.
func OpenVault(path string, defaultThreshold float64, logger *slog.Logger) (*VaultStore, error) {
	s := &VaultStore{path: path, logger: logger}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("open vault: %w", err)
		}
		s.data = vaultFile{Threshold: defaultThreshold}
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parse vault %s: %w", path, err)
	}
	if s.data.Threshold <= 0 || s.data.Threshold > 1 {
		s.data.Threshold = defaultThreshold
	}
	return s, nil
}

func (s *VaultStore) Threshold() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Threshold
}

func (s *VaultStore) SetThreshold(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Threshold = clamp(t, 0, 1)
}

// GetSnapshot recomputes every member's per-cluster score and returns the
// full collection state.
func (s *VaultStore) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	itemsByKey := s.itemsByKeyLocked()
	snap := &Snapshot{}

	type scored struct {
		cluster vaultCluster
		tokens  map[string]bool
		removed map[string]bool
		centers map[string]bool
	}
	clusters := make([]scored, 0, len(s.data.Clusters))
	for _, vc := range s.data.Clusters {
		c := Cluster{Key: vc.Key, Name: vc.Name}
		sc := scored{
			cluster: vc,
			tokens:  make(map[string]bool),
			removed: make(map[string]bool),
			centers: make(map[string]bool),
		}
		for _, key := range vc.Centers {
			it, ok := itemsByKey[key]
			if !ok {
				continue
			}
			c.Centers = append(c.Centers, it)
			sc.centers[key] = true
			for t := range tokenize(it.Name, it.Path) {
				sc.tokens[t] = true
			}
		}
		for _, key := range vc.Removed {
			sc.removed[key] = true
		}
		clusters = append(clusters, sc)
		snap.Clusters = append(snap.Clusters, c)
	}

	for _, it := range s.data.Items {
		m := Member{Item: it, Clusters: make(map[string]float64)}
		itTokens := tokenize(it.Name, it.Path)
		for _, sc := range clusters {
			if sc.removed[it.Key] {
				continue
			}
			if sc.centers[it.Key] {
				m.Clusters[sc.cluster.Key] = 1
				continue
			}
			if score := jaccard(itTokens, sc.tokens); score > 0 {
				m.Clusters[sc.cluster.Key] = score
			}
		}
		snap.Members = append(snap.Members, m)
	}
	return snap, nil
}

// CreateCluster makes a new cluster from the weighted center map and
// persists it.
func (s *VaultStore) CreateCluster(ctx context.Context, centers map[string]float64) (*Cluster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(centers) == 0 {
		return nil, fmt.Errorf("create cluster: no centers given")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	itemsByKey := s.itemsByKeyLocked()
	vc := vaultCluster{Key: uuid.New().String()}
	c := &Cluster{Key: vc.Key}
	for key := range centers {
		it, ok := itemsByKey[key]
		if !ok {
			return nil, fmt.Errorf("create cluster: unknown item %q", key)
		}
		vc.Centers = append(vc.Centers, key)
		c.Centers = append(c.Centers, it)
		if vc.Name == "" {
			vc.Name = it.Name
		}
	}
	c.Name = vc.Name
	s.data.Clusters = append(s.data.Clusters, vc)
	if err := s.saveLocked(); err != nil {
		s.data.Clusters = s.data.Clusters[:len(s.data.Clusters)-1]
		return nil, err
	}
	return c, nil
}

func (s *VaultStore) AddCenters(ctx context.Context, clusterKey string, itemKeys []string) error {
	return s.mutateCluster(ctx, clusterKey, func(vc *vaultCluster) error {
		have := make(map[string]bool, len(vc.Centers))
		for _, k := range vc.Centers {
			have[k] = true
		}
		for _, k := range itemKeys {
			if !have[k] {
				vc.Centers = append(vc.Centers, k)
			}
			vc.Removed = without(vc.Removed, k)
		}
		return nil
	})
}

func (s *VaultStore) RemoveCenters(ctx context.Context, clusterKey string, itemKeys []string) error {
	return s.mutateCluster(ctx, clusterKey, func(vc *vaultCluster) error {
		for _, k := range itemKeys {
			vc.Centers = without(vc.Centers, k)
		}
		return nil
	})
}

func (s *VaultStore) RemoveMembers(ctx context.Context, clusterKey string, itemKeys []string) error {
	return s.mutateCluster(ctx, clusterKey, func(vc *vaultCluster) error {
		for _, k := range itemKeys {
			vc.Centers = without(vc.Centers, k)
			vc.Removed = appendUnique(vc.Removed, k)
		}
		return nil
	})
}

func (s *VaultStore) RemoveClusters(ctx context.Context, clusterKeys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[string]bool, len(clusterKeys))
	for _, k := range clusterKeys {
		drop[k] = true
	}
	kept := make([]vaultCluster, 0, len(s.data.Clusters))
	for _, vc := range s.data.Clusters {
		if !drop[vc.Key] {
			kept = append(kept, vc)
		}
	}
	before := s.data.Clusters
	s.data.Clusters = kept
	if err := s.saveLocked(); err != nil {
		s.data.Clusters = before
		return err
	}
	return nil
}

// QueueSave persists pending setting changes after a short debounce.
// Fire-and-forget; a failed save is logged, not surfaced.
func (s *VaultStore) QueueSave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveTimer = time.AfterFunc(saveDebounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.saveLocked(); err != nil && s.logger != nil {
			s.logger.Error("vault save failed", "path", s.path, "error", err)
		}
	})
}

func (s *VaultStore) mutateCluster(ctx context.Context, clusterKey string, fn func(*vaultCluster) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Clusters {
		if s.data.Clusters[i].Key != clusterKey {
			continue
		}
		// Clone, not a struct copy: the mutation edits the slices, and a
		// restore must not alias the edited backing arrays.
		before := s.data.Clusters[i].clone()
		if err := fn(&s.data.Clusters[i]); err != nil {
			return err
		}
		if err := s.saveLocked(); err != nil {
			s.data.Clusters[i] = before
			return err
		}
		return nil
	}
	return fmt.Errorf("no such cluster %q", clusterKey)
}

func (s *VaultStore) itemsByKeyLocked() map[string]Item {
	byKey := make(map[string]Item, len(s.data.Items))
	for _, it := range s.data.Items {
		byKey[it.Key] = it
	}
	return byKey
}

// saveLocked writes the vault atomically: temp file in the same directory,
// then rename.
func (s *VaultStore) saveLocked() error {
	raw, err := json.MarshalIndent(&s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode vault: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save vault: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".clustermap-*")
	if err != nil {
		return fmt.Errorf("save vault: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save vault: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save vault: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save vault: %w", err)
	}
	return nil
}

// without returns a fresh slice so rollback copies never share a backing
// array with the filtered result.
func without(list []string, key string) []string {
	out := make([]string, 0, len(list))
	for _, k := range list {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

func appendUnique(list []string, key string) []string {
	for _, k := range list {
		if k == key {
			return list
		}
	}
	return append(list, key)
}
