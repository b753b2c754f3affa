package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"careerintel/pkg/models"
)

type CSVExporter struct {
	outputDir string
}

// NewCSVExporter creates a CSV exporter writing into the given directory.
func NewCSVExporter(outputDir string) *CSVExporter {
	return &CSVExporter{outputDir: outputDir}
}

// ExportPostings writes aggregated postings to a CSV file and returns the
// path. An empty filename gets a timestamped default.
func (e *CSVExporter) ExportPostings(postings []models.JobPosting, filename string) (string, error) {
	file, writer, path, err := e.open(filename, "jobs")
	if err != nil {
		return "", err
	}
	defer file.Close()
	defer writer.Flush()

	headers := []string{
		"Title", "Company", "Location", "Work Mode", "Seniority",
		"Salary", "Skills", "Source", "Posted Date", "Apply URL",
	}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range postings {
		record := []string{
			p.Title,
			p.Company,
			p.Location,
			p.WorkMode,
			p.Seniority,
			p.Salary,
			strings.Join(p.Skills, "; "),
			p.Source,
			p.PostedDate.Format("2006-01-02"),
			p.ApplyURL,
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write posting record: %w", err)
		}
	}
	return path, nil
}

// ExportMatches writes ranked match results, score columns first so the
// ordering is visible when the file is opened in a spreadsheet.
func (e *CSVExporter) ExportMatches(results []models.MatchResult, filename string) (string, error) {
	file, writer, path, err := e.open(filename, "matches")
	if err != nil {
		return "", err
	}
	defer file.Close()
	defer writer.Flush()

	headers := []string{
		"Match Score", "Title", "Company", "Location", "Work Mode",
		"Seniority", "Salary", "Skills", "Source", "Apply URL",
		"Skills Score", "Title Score", "Experience Score",
		"Location Score", "Salary Score", "Company Score",
	}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range results {
		record := []string{
			fmt.Sprintf("%.2f", r.MatchScore),
			r.Title,
			r.Company,
			r.Location,
			r.WorkMode,
			r.Seniority,
			r.Salary,
			strings.Join(r.Skills, "; "),
			r.Source,
			r.ApplyURL,
			fmt.Sprintf("%.2f", r.Breakdown.Skills),
			fmt.Sprintf("%.2f", r.Breakdown.Title),
			fmt.Sprintf("%.2f", r.Breakdown.Experience),
			fmt.Sprintf("%.2f", r.Breakdown.Location),
			fmt.Sprintf("%.2f", r.Breakdown.Salary),
			fmt.Sprintf("%.2f", r.Breakdown.Company),
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write match record: %w", err)
		}
	}
	return path, nil
}

func (e *CSVExporter) open(filename, prefix string) (*os.File, *csv.Writer, string, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return nil, nil, "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if filename == "" {
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		filename = fmt.Sprintf("%s_export_%s.csv", prefix, timestamp)
	}
	if !strings.HasSuffix(filename, ".csv") {
		filename += ".csv"
	}

	path := filepath.Join(e.outputDir, filename)
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	return file, csv.NewWriter(file), path, nil
}
