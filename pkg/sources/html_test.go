package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"careerintel/pkg/config"
	"careerintel/pkg/models"
)

func testSettings() config.GlobalSettings {
	return config.GlobalSettings{UserAgent: "test-agent"}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

const boardPage = `<html><body>
<div class="job-card">
	<h2 class="title">Senior Go Developer</h2>
	<span class="company">Acme Corp</span>
	<span class="location">Berlin (Remote)</span>
	<span class="salary">$90,000 - $120,000</span>
	<a class="apply" href="/jobs/123">Apply</a>
</div>
<div class="job-card">
	<h2 class="title">Backend Engineer</h2>
	<span class="company">Globex</span>
	<span class="location">Munich</span>
	<a class="apply" href="https://globex.example/jobs/7">Apply</a>
</div>
<div class="job-card">
	<h2 class="title"></h2>
	<span class="company">Broken Inc</span>
</div>
</body></html>`

func htmlSourceConfig(baseURL string) config.SourceConfig {
	return config.SourceConfig{
		Name:       "testboard",
		Enabled:    true,
		Kind:       "html",
		BaseURL:    baseURL,
		SearchPath: "/jobs",
		SearchParams: map[string]string{
			"q": "{query}",
			"l": "{location}",
		},
		Selectors: &config.Selectors{
			JobContainer: "div.job-card",
			Title:        "h2.title",
			Company:      "span.company",
			Location:     "span.location",
			Salary:       "span.salary",
			Link:         "a.apply",
		},
	}
}

func TestHTMLAdapterSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(boardPage))
	}))
	defer srv.Close()

	adapter := NewHTMLAdapter(htmlSourceConfig(srv.URL), testSettings(), quietLogger())

	jobs, err := adapter.Search(context.Background(), "go", "berlin", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	// The third card has no title and is skipped.
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}

	first := jobs[0]
	if first.Title != "Senior Go Developer" || first.Company != "Acme Corp" {
		t.Errorf("unexpected first job: %+v", first)
	}
	if first.WorkMode != models.WorkModeRemote {
		t.Errorf("WorkMode = %q, want Remote", first.WorkMode)
	}
	if first.ApplyURL != srv.URL+"/jobs/123" {
		t.Errorf("ApplyURL = %q, want absolute URL", first.ApplyURL)
	}

	if jobs[1].ApplyURL != "https://globex.example/jobs/7" {
		t.Errorf("absolute link rewritten: %q", jobs[1].ApplyURL)
	}
	if jobs[1].WorkMode != models.WorkModeOnSite {
		t.Errorf("WorkMode = %q, want On-site", jobs[1].WorkMode)
	}
}

func TestHTMLAdapterRespectsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(boardPage))
	}))
	defer srv.Close()

	adapter := NewHTMLAdapter(htmlSourceConfig(srv.URL), testSettings(), quietLogger())

	jobs, err := adapter.Search(context.Background(), "go", "", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(jobs) != 1 {
		t.Errorf("got %d jobs, want 1", len(jobs))
	}
}

func TestHTMLAdapterServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	adapter := NewHTMLAdapter(htmlSourceConfig(srv.URL), testSettings(), quietLogger())

	_, err := adapter.Search(context.Background(), "go", "", 10)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if !IsUnavailable(err) {
		t.Errorf("error %v is not an UnavailableError", err)
	}
}

func TestBuildSearchURL(t *testing.T) {
	adapter := NewHTMLAdapter(htmlSourceConfig("https://board.example"), testSettings(), quietLogger())

	got := adapter.buildSearchURL("go developer", "Berlin")
	want := "https://board.example/jobs?l=Berlin&q=go+developer"
	if got != want {
		t.Errorf("buildSearchURL() = %q, want %q", got, want)
	}
}
