package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"careerintel/pkg/config"
	"careerintel/pkg/models"
)

// RSSAdapter fetches listings from a job board's RSS or Atom feed. Feeds
// carry less structure than listing pages, so company and location are
// recovered from title conventions ("Company: Title", "Title at Company").
type RSSAdapter struct {
	name      string
	feedURL   string
	userAgent string
	client    *http.Client
	logger    *logrus.Logger
}

func NewRSSAdapter(cfg config.SourceConfig, settings config.GlobalSettings, logger *logrus.Logger) *RSSAdapter {
	return &RSSAdapter{
		name:      cfg.Name,
		feedURL:   cfg.FeedURL,
		userAgent: settings.UserAgent,
		client:    &http.Client{},
		logger:    logger,
	}
}

func (a *RSSAdapter) Name() string {
	return a.name
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Region      string `xml:"region"`
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
	Link    struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
	Published string `xml:"published"`
}

func (a *RSSAdapter) Search(ctx context.Context, query, location string, limit int) ([]models.RawJob, error) {
	if limit <= 0 {
		return []models.RawJob{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.feedURL, nil)
	if err != nil {
		return nil, unavailable(a.name, 0, err)
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, unavailable(a.name, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(a.name, resp.StatusCode, fmt.Errorf("unexpected status"))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return nil, unavailable(a.name, 0, err)
	}

	items, err := parseFeed(body)
	if err != nil {
		return nil, unavailable(a.name, 0, err)
	}

	needle := strings.ToLower(query)
	jobs := make([]models.RawJob, 0, limit)
	for _, item := range items {
		if len(jobs) >= limit {
			break
		}
		if needle != "" && !strings.Contains(strings.ToLower(item.Title+" "+item.Description), needle) {
			continue
		}

		title, company := splitFeedTitle(item.Title)
		raw := models.RawJob{
			Title:       title,
			Company:     company,
			Location:    strings.TrimSpace(item.Region),
			Description: strings.TrimSpace(item.Description),
			ApplyURL:    strings.TrimSpace(item.Link),
		}
		if !raw.Valid() {
			continue
		}
		raw.WorkMode = models.DetectWorkMode(raw.Location + " " + raw.Title)
		if parsed, err := time.Parse(time.RFC1123Z, item.PubDate); err == nil {
			raw.PostedDate = parsed
		}

		jobs = append(jobs, raw)
	}
	return jobs, nil
}

// parseFeed handles RSS 2.0 and Atom; Atom entries are folded into the RSS
// item shape so the caller only deals with one.
func parseFeed(body []byte) ([]rssItem, error) {
	var rss rssFeed
	if err := xml.Unmarshal(body, &rss); err == nil && len(rss.Channel.Items) > 0 {
		return rss.Channel.Items, nil
	}

	var atom atomFeed
	if err := xml.Unmarshal(body, &atom); err != nil {
		return nil, fmt.Errorf("feed is neither RSS nor Atom: %w", err)
	}
	items := make([]rssItem, 0, len(atom.Entries))
	for _, e := range atom.Entries {
		items = append(items, rssItem{
			Title:       e.Title,
			Description: e.Summary,
			Link:        e.Link.Href,
			PubDate:     e.Published,
		})
	}
	return items, nil
}

// splitFeedTitle separates company and role from a feed item title.
// "Acme Corp: Backend Engineer" and "Backend Engineer at Acme Corp" are the
// two conventions seen in the wild.
func splitFeedTitle(full string) (title, company string) {
	full = strings.TrimSpace(full)
	if parts := strings.SplitN(full, ": ", 2); len(parts) == 2 {
		return strings.TrimSpace(parts[1]), strings.TrimSpace(parts[0])
	}
	if parts := strings.SplitN(full, " at ", 2); len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return full, ""
}
