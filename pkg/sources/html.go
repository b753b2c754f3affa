package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"

	"careerintel/pkg/config"
	"careerintel/pkg/models"
)

// HTMLAdapter scrapes a selector-driven job board. Boards that hydrate
// their listings client-side are fetched through a headless browser
// instead of a plain GET (RenderJS in the source config).
type HTMLAdapter struct {
	cfg       config.SourceConfig
	userAgent string
	logger    *logrus.Logger
}

func NewHTMLAdapter(cfg config.SourceConfig, settings config.GlobalSettings, logger *logrus.Logger) *HTMLAdapter {
	return &HTMLAdapter{
		cfg:       cfg,
		userAgent: settings.UserAgent,
		logger:    logger,
	}
}

func (a *HTMLAdapter) Name() string {
	return a.cfg.Name
}

// Search performs one fetch of the board's search results page and parses
// listings best-effort. Entries missing title or company are skipped.
func (a *HTMLAdapter) Search(ctx context.Context, query, location string, limit int) ([]models.RawJob, error) {
	if limit <= 0 {
		return []models.RawJob{}, nil
	}

	searchURL := a.buildSearchURL(query, location)

	if a.cfg.RenderJS {
		return a.searchRendered(ctx, searchURL, limit)
	}
	return a.searchStatic(ctx, searchURL, limit)
}

func (a *HTMLAdapter) buildSearchURL(query, location string) string {
	params := url.Values{}
	for key, value := range a.cfg.SearchParams {
		value = strings.ReplaceAll(value, "{query}", query)
		value = strings.ReplaceAll(value, "{location}", location)
		if value != "" {
			params.Set(key, value)
		}
	}

	base := a.cfg.BaseURL + a.cfg.SearchPath
	if len(params) == 0 {
		return base
	}
	return base + "?" + params.Encode()
}

func (a *HTMLAdapter) searchStatic(ctx context.Context, searchURL string, limit int) ([]models.RawJob, error) {
	sel := a.cfg.Selectors

	c := colly.NewCollector(colly.UserAgent(a.userAgent))
	if deadline, ok := ctx.Deadline(); ok {
		c.SetRequestTimeout(time.Until(deadline))
	}

	var (
		mu       sync.Mutex
		jobs     []models.RawJob
		fetchErr error
	)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})

	c.OnHTML(sel.JobContainer, func(e *colly.HTMLElement) {
		mu.Lock()
		defer mu.Unlock()
		if len(jobs) >= limit {
			return
		}

		raw := models.RawJob{
			Title:       strings.TrimSpace(e.ChildText(sel.Title)),
			Company:     strings.TrimSpace(e.ChildText(sel.Company)),
			Location:    strings.TrimSpace(e.ChildText(sel.Location)),
			Salary:      strings.TrimSpace(e.ChildText(sel.Salary)),
			Description: strings.TrimSpace(e.ChildText(sel.Description)),
		}
		if !raw.Valid() {
			return
		}

		link := e.ChildAttr(sel.Link, "href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = e.Request.AbsoluteURL(link)
		}
		raw.ApplyURL = link
		raw.WorkMode = models.DetectWorkMode(raw.Location)

		jobs = append(jobs, raw)
	})

	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = unavailable(a.cfg.Name, status, err)
	})

	if err := c.Visit(searchURL); err != nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, unavailable(a.cfg.Name, 0, err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if err := ctx.Err(); err != nil {
		return nil, unavailable(a.cfg.Name, 0, err)
	}
	return jobs, nil
}

// pageJob mirrors what the in-browser extraction script returns.
type pageJob struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Salary      string `json:"salary"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

func (a *HTMLAdapter) searchRendered(ctx context.Context, searchURL string, limit int) ([]models.RawJob, error) {
	cctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	sel := a.cfg.Selectors
	var pageJobs []pageJob

	err := chromedp.Run(cctx,
		chromedp.Navigate(searchURL),
		chromedp.WaitVisible(sel.JobContainer, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second), // allow lazy-loaded cards to settle
		chromedp.Evaluate(a.extractScript(), &pageJobs),
	)
	if err != nil {
		return nil, unavailable(a.cfg.Name, 0, fmt.Errorf("render failed: %w", err))
	}

	jobs := make([]models.RawJob, 0, len(pageJobs))
	for _, pj := range pageJobs {
		if len(jobs) >= limit {
			break
		}
		raw := models.RawJob{
			Title:       strings.TrimSpace(pj.Title),
			Company:     strings.TrimSpace(pj.Company),
			Location:    strings.TrimSpace(pj.Location),
			Salary:      strings.TrimSpace(pj.Salary),
			Description: strings.TrimSpace(pj.Description),
			ApplyURL:    pj.Link,
		}
		if !raw.Valid() {
			continue
		}
		raw.WorkMode = models.DetectWorkMode(raw.Location)
		jobs = append(jobs, raw)
	}
	return jobs, nil
}

func (a *HTMLAdapter) extractScript() string {
	sel := a.cfg.Selectors
	return `
		(() => {
			const q = (c, s) => { if (!s) return null; try { return c.querySelector(s); } catch { return null; } };
			const text = (c, s) => q(c, s)?.textContent?.trim() || '';
			const jobs = [];
			document.querySelectorAll('` + sel.JobContainer + `').forEach(container => {
				jobs.push({
					title: text(container, '` + sel.Title + `'),
					company: text(container, '` + sel.Company + `'),
					location: text(container, '` + sel.Location + `'),
					salary: text(container, '` + sel.Salary + `'),
					description: text(container, '` + sel.Description + `'),
					link: q(container, '` + sel.Link + `')?.href || ''
				});
			});
			return jobs;
		})()
	`
}
