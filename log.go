package depot

import "github.com/rs/zerolog"

func loadPoolIntoArrayLogger(pool Pool, arrayLogger *zerolog.Array) *zerolog.Array {
	key := pool.Key()
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Str("type", key.Name)
	dictLogger = dictLogger.Uint64("hash", key.Hash)
	dictLogger = dictLogger.Int("block_size", pool.BlockSize())
	dictLogger = dictLogger.Int("blocks", pool.BlockCount())
	dictLogger = dictLogger.Int("live", pool.LiveCount())
	dictLogger = dictLogger.Int("free", pool.FreeCount())
	return arrayLogger.Dict(dictLogger)
}

// LogPool emits one pool's state at the given level.
func LogPool(logger *zerolog.Logger, pool Pool, level zerolog.Level) {
	key := pool.Key()
	logger.WithLevel(level).
		Str("type", key.Name).
		Uint64("hash", key.Hash).
		Int("block_size", pool.BlockSize()).
		Int("blocks", pool.BlockCount()).
		Int("live", pool.LiveCount()).
		Int("free", pool.FreeCount()).
		Send()
}

// LogRegistry emits a registry overview: entity counts plus a dict per pool.
func LogRegistry(logger *zerolog.Logger, r Registry, level zerolog.Level) {
	event := logger.WithLevel(level)
	event.Int("total_entities", r.EntityCount())
	event.Int("destroyed", r.DestroyedCount())
	arrayLogger := zerolog.Arr()
	pools := 0
	for pool := range r.Pools() {
		arrayLogger = loadPoolIntoArrayLogger(pool, arrayLogger)
		pools++
	}
	event.Int("total_pools", pools)
	event.Array("pools", arrayLogger)
	event.Send()
}
