package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hrperf/internal/domain/apperr"
)

func TestDateField(t *testing.T) {
	v := apperr.NewValidator()
	got := DateField(v, "dueDate", "2025-03-01", true)
	if !got.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %s", got)
	}
	DateField(v, "start", "", true)
	DateField(v, "end", "01/02/2025", false)
	if OptionalDate(v, "target", "") != nil {
		t.Fatal("expected nil for empty optional date")
	}
	issues := v.Issues()
	if len(issues) != 2 || issues[0].Field != "end" || issues[1].Field != "start" {
		t.Fatalf("unexpected issues %+v", issues)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct{ Name string }
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	if !DecodeJSON(httptest.NewRecorder(), r, &dst) || dst.Name != "x" {
		t.Fatalf("expected decode, got %+v", dst)
	}

	rec := httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	if DecodeJSON(rec, r, &dst) || rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	r = httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	if !DecodeJSON(httptest.NewRecorder(), r, &dst) {
		t.Fatal("expected empty body to be accepted")
	}
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=900&offset=20", nil)
	p := ParsePagination(r, 50, 200)
	if p.Limit != 200 || p.Offset != 20 {
		t.Fatalf("unexpected pagination %+v", p)
	}
	p = ParsePagination(httptest.NewRequest(http.MethodGet, "/?limit=-1", nil), 50, 200)
	if p.Limit != 50 || p.Offset != 0 {
		t.Fatalf("unexpected defaults %+v", p)
	}
}

func TestPageSetsTotalAndSlices(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	rec := httptest.NewRecorder()
	got := Page(rec, items, Pagination{Limit: 2, Offset: 3})
	if len(got) != 2 || got[0] != 4 || rec.Header().Get("X-Total-Count") != "5" {
		t.Fatalf("unexpected page %v total %q", got, rec.Header().Get("X-Total-Count"))
	}
	if got := Page(httptest.NewRecorder(), items, Pagination{Limit: 2, Offset: 10}); len(got) != 0 {
		t.Fatalf("expected empty page, got %v", got)
	}
}
