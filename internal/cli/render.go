package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/feedcache/storage"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("110"))

	idStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("254"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	metadataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)
)

// renderFeed formats the cached feed for terminal output. A nil feed renders
// as an empty-cache notice.
func renderFeed(feed *storage.Snapshot) string {
	if feed == nil {
		return emptyStyle.Render("The cache is empty")
	}

	var sb strings.Builder
	header := fmt.Sprintf("Cached feed from %s (%d images)",
		feed.Timestamp.Format(time.RFC3339), len(feed.Images))
	sb.WriteString(headerStyle.Render(header))

	for i, img := range feed.Images {
		sb.WriteString("\n\n")
		sb.WriteString(idStyle.Render(fmt.Sprintf("#%d %s", i+1, img.ID)))
		sb.WriteString("\n  ")
		sb.WriteString(urlStyle.Render(img.URL.String()))
		if img.Description != nil {
			sb.WriteString("\n  ")
			sb.WriteString(metadataStyle.Render("description: " + *img.Description))
		}
		if img.Location != nil {
			sb.WriteString("\n  ")
			sb.WriteString(metadataStyle.Render("location: " + *img.Location))
		}
	}

	return sb.String()
}

// feedJSON mirrors the seed-file layout so inspect output can be fed back
// into the seed command.
type feedJSON struct {
	Timestamp time.Time   `json:"timestamp"`
	Images    []imageJSON `json:"images"`
}

type imageJSON struct {
	ID          string  `json:"id"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	URL         string  `json:"url"`
}

// renderFeedJSON formats the cached feed as indented JSON. A nil feed
// renders as JSON null.
func renderFeedJSON(feed *storage.Snapshot) (string, error) {
	if feed == nil {
		return "null", nil
	}

	out := feedJSON{
		Timestamp: feed.Timestamp,
		Images:    make([]imageJSON, 0, len(feed.Images)),
	}
	for _, img := range feed.Images {
		out.Images = append(out.Images, imageJSON{
			ID:          img.ID.String(),
			Description: img.Description,
			Location:    img.Location,
			URL:         img.URL.String(),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return string(data), nil
}
