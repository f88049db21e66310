package sqlite

// FeedImageCacheSchema defines the single table the cache engine manages.
// Optional columns are nullable so an absent value survives a round trip
// instead of collapsing into an empty string.
const FeedImageCacheSchema = `
CREATE TABLE IF NOT EXISTS FeedImageCache (
	id TEXT PRIMARY KEY NOT NULL,
	description TEXT,
	location TEXT,
	url TEXT NOT NULL,
	timestamp REAL NOT NULL
);
`
