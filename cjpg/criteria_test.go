package cjpg

import (
	"errors"
	"testing"
)

func validCriteria() Criteria {
	return Criteria{
		DateFrom:     "01/03/2024",
		DateTo:       "31/03/2024",
		Judge:        "Fulano de Tal",
		MaxDocuments: 10,
	}
}

func TestCriteriaValidate(t *testing.T) {
	if err := validCriteria().Validate(); err != nil {
		t.Fatalf("valid criteria rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Criteria)
	}{
		{"empty dateFrom", func(c *Criteria) { c.DateFrom = "" }},
		{"empty dateTo", func(c *Criteria) { c.DateTo = "" }},
		{"empty judge", func(c *Criteria) { c.Judge = "" }},
		{"zero maxDocuments", func(c *Criteria) { c.MaxDocuments = 0 }},
		{"negative maxDocuments", func(c *Criteria) { c.MaxDocuments = -3 }},
		{"US date format", func(c *Criteria) { c.DateFrom = "03/31/2024" }},
		{"ISO date format", func(c *Criteria) { c.DateTo = "2024-03-31" }},
		{"garbage date", func(c *Criteria) { c.DateFrom = "hoje" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCriteria()
			tt.mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidCriteria) {
				t.Errorf("error %v should wrap ErrInvalidCriteria", err)
			}
		})
	}
}

func TestProcessToken(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		idx         int
		wantProcess string
		wantToken   string
	}{
		{
			name:        "plain process number",
			url:         "https://esaj.test/cjpg/getPDF.do?nuProcesso=1001234-56.2024.8.26.0100&cdDoc=9",
			wantProcess: "1001234-56.2024.8.26.0100",
			wantToken:   "1001234-56.2024.8.26.0100",
		},
		{
			name:        "unsafe characters sanitized in token only",
			url:         "https://esaj.test/getPDF.do?nuProcesso=12%2F34&x=1",
			wantProcess: "12%2F34",
			wantToken:   "12_2F34",
		},
		{
			name:        "missing parameter falls back to synthetic token",
			url:         "https://esaj.test/getPDF.do?cdDoc=9",
			idx:         2,
			wantProcess: "doc_3",
			wantToken:   "doc_3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			process, token := processToken(tt.url, tt.idx)
			if process != tt.wantProcess {
				t.Errorf("process = %q, want %q", process, tt.wantProcess)
			}
			if token != tt.wantToken {
				t.Errorf("token = %q, want %q", token, tt.wantToken)
			}
		})
	}
}

func TestIsDocumentResponse(t *testing.T) {
	tests := []struct {
		name string
		url  string
		mime string
		want bool
	}{
		{
			name: "pdf from retrieval endpoint",
			url:  "https://esaj.test/cjpg/getPDF.do?nuProcesso=1",
			mime: "application/pdf",
			want: true,
		},
		{
			name: "octet stream counts as binary document",
			url:  "https://esaj.test/cjpg/getPDF.do?nuProcesso=1",
			mime: "application/octet-stream",
			want: true,
		},
		{
			name: "viewer wrapper is excluded even with matching endpoint",
			url:  "https://esaj.test/viewer.html?file=getPDF.do%3FnuProcesso%3D1",
			mime: "application/pdf",
			want: false,
		},
		{
			name: "wrong endpoint",
			url:  "https://esaj.test/cjpg/pesquisar.do",
			mime: "application/pdf",
			want: false,
		},
		{
			name: "html from retrieval endpoint",
			url:  "https://esaj.test/cjpg/getPDF.do?nuProcesso=1",
			mime: "text/html",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDocumentResponse(tt.url, tt.mime); got != tt.want {
				t.Errorf("isDocumentResponse(%q, %q) = %v, want %v", tt.url, tt.mime, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("curto", 10); got != "curto" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("0123456789abc", 10); got != "0123456789..." {
		t.Errorf("truncate = %q", got)
	}
}
