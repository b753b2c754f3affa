package models

import "testing"

func TestDetectWorkMode(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"Remote", WorkModeRemote},
		{"Berlin (Remote)", WorkModeRemote},
		{"remote - worldwide", WorkModeRemote},
		{"Hybrid - London", WorkModeHybrid},
		{"Remote/Hybrid", WorkModeRemote},
		{"New York, NY", WorkModeOnSite},
		{"", WorkModeOnSite},
	}

	for _, tt := range tests {
		if got := DetectWorkMode(tt.location); got != tt.want {
			t.Errorf("DetectWorkMode(%q) = %q, want %q", tt.location, got, tt.want)
		}
	}
}

func TestRawJobValid(t *testing.T) {
	tests := []struct {
		name string
		job  RawJob
		want bool
	}{
		{"complete", RawJob{Title: "Engineer", Company: "Acme"}, true},
		{"missing title", RawJob{Company: "Acme"}, false},
		{"missing company", RawJob{Title: "Engineer"}, false},
		{"whitespace title", RawJob{Title: "   ", Company: "Acme"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.job.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJobPostingKeyIsCaseFolded(t *testing.T) {
	a := JobPosting{Title: "Go Developer", Company: "Acme", Location: "Berlin"}
	b := JobPosting{Title: "GO DEVELOPER", Company: "acme", Location: "BERLIN"}
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}

	c := JobPosting{Title: "Go Developer", Company: "Acme", Location: "Munich"}
	if a.Key() == c.Key() {
		t.Error("different locations should produce different keys")
	}
}

func TestSalaryBounds(t *testing.T) {
	tests := []struct {
		salary  string
		wantMin int
		wantMax int
	}{
		{"$80,000 - $120,000", 80000, 120000},
		{"80k-120k", 80000, 120000},
		{"$95,000", 95000, 95000},
		{"Competitive", 0, 0},
		{"", 0, 0},
		{"up to 5 days remote", 0, 0},
	}

	for _, tt := range tests {
		p := JobPosting{Salary: tt.salary}
		min, max := p.SalaryBounds()
		if min != tt.wantMin || max != tt.wantMax {
			t.Errorf("SalaryBounds(%q) = (%d, %d), want (%d, %d)", tt.salary, min, max, tt.wantMin, tt.wantMax)
		}
	}
}

func TestIsRemote(t *testing.T) {
	if !(JobPosting{WorkMode: WorkModeRemote}).IsRemote() {
		t.Error("Remote posting should be remote")
	}
	if (JobPosting{WorkMode: WorkModeHybrid}).IsRemote() {
		t.Error("Hybrid posting should not be remote")
	}
}
