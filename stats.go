package depot

import (
	iter_util "github.com/TheBitDrifter/util/iter"
	"github.com/goccy/go-json"
)

// PoolStats is a point-in-time snapshot of one pool.
type PoolStats struct {
	Type      string  `json:"type"`
	Hash      uint64  `json:"hash"`
	ElemSize  uintptr `json:"elem_size"`
	BlockSize int     `json:"block_size"`
	Blocks    int     `json:"blocks"`
	Live      int     `json:"live"`
	Free      int     `json:"free"`
}

// RegistryStats is a point-in-time snapshot of a registry and its pools.
type RegistryStats struct {
	Entities  int         `json:"entities"`
	Live      int         `json:"live"`
	Destroyed int         `json:"destroyed"`
	Pools     []PoolStats `json:"pools"`
}

// Stats collects a registry snapshot.
func Stats(r Registry) RegistryStats {
	pools := iter_util.Collect(r.Pools())
	stats := RegistryStats{
		Entities:  r.EntityCount(),
		Destroyed: r.DestroyedCount(),
		Pools:     make([]PoolStats, 0, len(pools)),
	}
	stats.Live = stats.Entities - stats.Destroyed
	for _, pool := range pools {
		key := pool.Key()
		stats.Pools = append(stats.Pools, PoolStats{
			Type:      key.Name,
			Hash:      key.Hash,
			ElemSize:  pool.ElemSize(),
			BlockSize: pool.BlockSize(),
			Blocks:    pool.BlockCount(),
			Live:      pool.LiveCount(),
			Free:      pool.FreeCount(),
		})
	}
	return stats
}

// StatsJSON renders the snapshot as JSON.
func StatsJSON(r Registry) ([]byte, error) {
	return json.Marshal(Stats(r))
}
