package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"
)

const pexelsVideoSearchURL = "https://api.pexels.com/videos/search"

// PexelsClient looks up portrait stock video clips for reel slides.
type PexelsClient struct {
	apiKey string
	http   *http.Client
}

// NewPexelsClient creates a client. apiKey may be empty, in which case every
// lookup returns ErrNoClip and callers serve scripts without clips.
func NewPexelsClient(apiKey string, timeout time.Duration) *PexelsClient {
	return &PexelsClient{
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
	}
}

type pexelsVideoFile struct {
	Link     string `json:"link"`
	FileType string `json:"file_type"`
	Width    int    `json:"width"`
}

type pexelsVideo struct {
	VideoFiles []pexelsVideoFile `json:"video_files"`
}

type pexelsSearchResponse struct {
	Videos []pexelsVideo `json:"videos"`
}

// FindClip returns the URL of a portrait mp4 clip matching keyword. The
// smallest usable rendition is preferred so reels load fast on mobile.
func (c *PexelsClient) FindClip(ctx context.Context, keyword string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoClip
	}

	q := url.Values{}
	q.Set("query", keyword)
	q.Set("orientation", "portrait")
	q.Set("per_page", "3")
	q.Set("size", "small")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pexelsVideoSearchURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build pexels request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("pexels search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pexels search: unexpected status %d", resp.StatusCode)
	}

	var parsed pexelsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode pexels response: %w", err)
	}

	for _, video := range parsed.Videos {
		files := append([]pexelsVideoFile(nil), video.VideoFiles...)
		sort.Slice(files, func(i, j int) bool { return files[i].Width < files[j].Width })
		for _, f := range files {
			if f.Link != "" && f.FileType == "video/mp4" {
				return f.Link, nil
			}
		}
		if len(video.VideoFiles) > 0 && video.VideoFiles[0].Link != "" {
			return video.VideoFiles[0].Link, nil
		}
	}
	return "", ErrNoClip
}
