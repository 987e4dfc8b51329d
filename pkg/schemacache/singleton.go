package schemacache

var cache *Cache

// SetCache installs the process-wide schema cache; bootstrap calls this
// once after Open.
func SetCache(c *Cache) {
	cache = c
}

func GetCache() *Cache {
	return cache
}
