package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/lepinkainen/feedcache/storage"
)

// seedImage is one feed image in a seed file. The field layout matches the
// JSON printed by inspect --json.
type seedImage struct {
	ID          string  `json:"id,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	URL         string  `json:"url"`
}

// seedFeed is the object form of a seed file, as printed by inspect --json.
type seedFeed struct {
	Timestamp *time.Time  `json:"timestamp,omitempty"`
	Images    []seedImage `json:"images"`
}

// loadSeedFile reads the new feed from path. The timestamp is non-nil only
// when the file carried one. Images without an id get a generated one; a
// missing or invalid url fails the whole file.
func loadSeedFile(path string) ([]storage.FeedImage, *time.Time, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read seed file: %w", err)
	}

	seeds, timestamp, err := parseSeed(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	images := make([]storage.FeedImage, 0, len(seeds))
	for i, seed := range seeds {
		image, err := seed.toFeedImage()
		if err != nil {
			return nil, nil, fmt.Errorf("seed image %d: %w", i, err)
		}
		images = append(images, image)
	}

	return images, timestamp, nil
}

// parseSeed accepts either a bare JSON array of images or the feed object
// printed by inspect --json, so an inspect dump restores into another cache.
func parseSeed(data []byte) ([]seedImage, *time.Time, error) {
	var seeds []seedImage
	if err := json.Unmarshal(data, &seeds); err == nil {
		return seeds, nil, nil
	}

	var feed seedFeed
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, nil, fmt.Errorf("expected an image array or a feed object: %w", err)
	}
	if feed.Images == nil {
		return nil, nil, fmt.Errorf("feed object has no images array")
	}

	return feed.Images, feed.Timestamp, nil
}

func (s seedImage) toFeedImage() (storage.FeedImage, error) {
	id := uuid.New()
	if s.ID != "" {
		parsed, err := uuid.Parse(s.ID)
		if err != nil {
			return storage.FeedImage{}, fmt.Errorf("invalid id %q: %w", s.ID, err)
		}
		id = parsed
	}

	if s.URL == "" {
		return storage.FeedImage{}, fmt.Errorf("missing url")
	}
	imageURL, err := url.ParseRequestURI(s.URL)
	if err != nil {
		return storage.FeedImage{}, fmt.Errorf("invalid url %q: %w", s.URL, err)
	}

	return storage.FeedImage{
		ID:          id,
		Description: s.Description,
		Location:    s.Location,
		URL:         imageURL,
	}, nil
}
