// Package douban fetches a user's finished interests from Douban's mobile API.
package douban

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL = "https://m.douban.com"
	pageSize       = 50
	pages          = 2

	mobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 MicroMessenger/8.0.31(0x18001f30) NetType/WIFI Language/zh_CN"
)

var (
	// ErrNotFound means the user does not exist or hides their profile.
	ErrNotFound = errors.New("douban: user not found or private")
	// ErrBlocked means Douban refused the request.
	ErrBlocked = errors.New("douban: request blocked")
)

// UpstreamError is any other non-success answer from Douban.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("douban: unexpected status %d", e.Status)
}

// Categories accepted by the interests endpoint.
var Categories = map[string]bool{"book": true, "movie": true, "music": true}

// Client talks to the rexxar interests API.
type Client struct {
	BaseURL string
	Client  *http.Client
}

// Interest is a rated record as handed to the browser and the prompt.
type Interest struct {
	Title      string   `json:"title"`
	Rating     float64  `json:"rating"`
	Tags       []string `json:"tags"`
	Comment    string   `json:"comment,omitempty"`
	CreateTime string   `json:"create_time"`
	Year       string   `json:"year,omitempty"`
	CoverURL   string   `json:"cover_url"`
	Type       string   `json:"type,omitempty"`
}

// Collection is the result of one full fetch.
type Collection struct {
	Count     int        `json:"count"`
	Interests []Interest `json:"interests"`
}

type interestsPage struct {
	Count     int           `json:"count"`
	Total     int           `json:"total"`
	Interests []rawInterest `json:"interests"`
}

type rawInterest struct {
	Comment    string      `json:"comment"`
	CreateTime string      `json:"create_time"`
	Tags       []string    `json:"tags"`
	Rating     *rawRating  `json:"rating"`
	Subject    *rawSubject `json:"subject"`
}

type rawRating struct {
	Value *float64 `json:"value"`
}

type rawSubject struct {
	Title    string     `json:"title"`
	Year     flexString `json:"year"`
	CoverURL string     `json:"cover_url"`
	Pic      *struct {
		Large string `json:"large"`
	} `json:"pic"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// fetchPage returns one raw page of finished interests.
func (c *Client) fetchPage(ctx context.Context, userID, category string, start, count int) ([]rawInterest, error) {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	q := url.Values{}
	q.Set("type", category)
	q.Set("status", "done")
	q.Set("count", strconv.Itoa(count))
	q.Set("start", strconv.Itoa(start))
	q.Set("ck", "ruZ3")
	q.Set("for_mobile", "1")
	u := fmt.Sprintf("%s/rexxar/api/v2/user/%s/interests?%s", strings.TrimRight(baseURL, "/"), url.PathEscape(userID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("douban: create request: %w", err)
	}
	req.Header.Set("Referer", "https://m.douban.com/mine/")
	req.Header.Set("User-Agent", mobileUserAgent)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("douban: request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrBlocked
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	var page interestsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("douban: decode response: %w", err)
	}
	return page.Interests, nil
}

// FetchAll fetches the first two pages concurrently and keeps rated records only.
func (c *Client) FetchAll(ctx context.Context, userID, category string) (Collection, error) {
	results := make([][]rawInterest, pages)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < pages; i++ {
		g.Go(func() error {
			page, err := c.fetchPage(gctx, userID, category, i*pageSize, pageSize)
			if err != nil {
				return err
			}
			results[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Collection{}, err
	}

	items := make([]Interest, 0, pages*pageSize)
	for _, page := range results {
		for _, raw := range page {
			if it, ok := toInterest(raw, category); ok {
				items = append(items, it)
			}
		}
	}
	return Collection{Count: len(items), Interests: items}, nil
}

func toInterest(raw rawInterest, category string) (Interest, bool) {
	if raw.Rating == nil || raw.Rating.Value == nil {
		return Interest{}, false
	}

	it := Interest{
		Title:      "未知",
		Rating:     *raw.Rating.Value,
		Tags:       raw.Tags,
		Comment:    raw.Comment,
		CreateTime: raw.CreateTime,
		Type:       category,
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	if s := raw.Subject; s != nil {
		if s.Title != "" {
			it.Title = s.Title
		}
		it.Year = string(s.Year)
		if s.Pic != nil && s.Pic.Large != "" {
			it.CoverURL = s.Pic.Large
		} else {
			it.CoverURL = s.CoverURL
		}
	}
	return it, true
}
