package cache

//go:generate mockgen -destination=cachemock/mock_cache.go -package=cachemock . Cache
