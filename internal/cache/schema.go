package cache

// feedCacheTable holds extracted feed records keyed by feed URL
const feedCacheTable = "feed_cache"

// feedCacheSchema defines the schema for the feed cache
const feedCacheSchema = `
CREATE TABLE IF NOT EXISTS feed_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_feed_cached_at ON feed_cache(cached_at);
`
