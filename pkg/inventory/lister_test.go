package inventory

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/eunmann/s3-meta/pkg/listing"
	"github.com/eunmann/s3-meta/pkg/metrics"
)

func csvRows(keys ...string) string {
	var b strings.Builder
	for i, k := range keys {
		fmt.Fprintf(&b, "src,%s,%d,2024-01-%02dT00:00:00Z\n", k, i+1, i+1)
	}
	return b.String()
}

func csvReport(t *testing.T) (*fakeS3, *Manifest) {
	t.Helper()
	api := &fakeS3{objects: map[string][]byte{
		"inv/data/part-0.csv":    []byte(csvRows("logs/a.txt", "img/b.png", "logs/c.txt")),
		"inv/data/part-1.csv.gz": gzipBytes(t, csvRows("logs/d.txt", "logs/e.txt")),
	}}
	m := &Manifest{
		DestinationBucket: "arn:aws:s3:::inv",
		FileFormat:        "CSV",
		FileSchema:        "Bucket, Key, Size, LastModifiedDate",
		Files: []ManifestFile{
			{Key: "data/part-0.csv"},
			{Key: "data/part-1.csv.gz"},
		},
	}
	return api, m
}

// drain pages through l from the start, returning every page.
func drain(t *testing.T, l listing.Lister) []*listing.Page {
	t.Helper()
	var pages []*listing.Page
	token := ""
	for {
		page, err := l.ListPage(context.Background(), token)
		if err != nil {
			t.Fatalf("ListPage(%q) failed: %v", token, err)
		}
		pages = append(pages, page)
		if page.NextToken == "" {
			return pages
		}
		if len(pages) > 100 {
			t.Fatal("listing did not terminate")
		}
		token = page.NextToken
	}
}

func keysOf(pages []*listing.Page) []string {
	var keys []string
	for _, p := range pages {
		for _, r := range p.Records {
			keys = append(keys, r.Key)
		}
	}
	return keys
}

func TestLister_CSV(t *testing.T) {
	api, m := csvReport(t)
	l, err := NewLister(api, m, "", 2)
	if err != nil {
		t.Fatalf("NewLister failed: %v", err)
	}
	defer l.Close()

	pages := drain(t, l)

	want := "logs/a.txt,img/b.png,logs/c.txt,logs/d.txt,logs/e.txt"
	if got := strings.Join(keysOf(pages), ","); got != want {
		t.Errorf("keys = %s, want %s", got, want)
	}
	for i, p := range pages {
		if len(p.Records) > 2 {
			t.Errorf("page %d has %d records, want at most 2", i, len(p.Records))
		}
	}
	if got := strings.Join(api.gets, ","); got != "inv/data/part-0.csv,inv/data/part-1.csv.gz" {
		t.Errorf("sequential paging fetched %s, want each file once", got)
	}

	first := pages[0].Records[0]
	if first.Size != 1 || !first.LastModified.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first record = %+v", first)
	}
}

func TestLister_PrefixFilter(t *testing.T) {
	api, m := csvReport(t)
	l, err := NewLister(api, m, "logs/", 10)
	if err != nil {
		t.Fatalf("NewLister failed: %v", err)
	}
	defer l.Close()

	if got := strings.Join(keysOf(drain(t, l)), ","); got != "logs/a.txt,logs/c.txt,logs/d.txt,logs/e.txt" {
		t.Errorf("keys = %s", got)
	}
}

func TestLister_ResumeFromToken(t *testing.T) {
	api, m := csvReport(t)

	l, err := NewLister(api, m, "", 2)
	if err != nil {
		t.Fatalf("NewLister failed: %v", err)
	}
	page, err := l.ListPage(context.Background(), "")
	if err != nil {
		t.Fatalf("ListPage failed: %v", err)
	}
	l.Close()

	resumed, err := NewLister(api, m, "", 2)
	if err != nil {
		t.Fatalf("NewLister failed: %v", err)
	}
	defer resumed.Close()

	next, err := resumed.ListPage(context.Background(), page.NextToken)
	if err != nil {
		t.Fatalf("ListPage(%q) failed: %v", page.NextToken, err)
	}
	if len(next.Records) == 0 || next.Records[0].Key != "logs/c.txt" {
		t.Errorf("resumed page = %+v, want to start at logs/c.txt", next.Records)
	}
}

func TestLister_Errors(t *testing.T) {
	api, m := csvReport(t)

	l, err := NewLister(api, m, "", 2)
	if err != nil {
		t.Fatalf("NewLister failed: %v", err)
	}
	for _, token := range []string{"garbage", "1", "a:b", "-1:0"} {
		if _, err := l.ListPage(context.Background(), token); err == nil {
			t.Errorf("ListPage(%q) expected error", token)
		}
	}

	m.Files = append(m.Files, ManifestFile{Key: "data/missing.csv"})
	l, err = NewLister(api, m, "", 100)
	if err != nil {
		t.Fatalf("NewLister failed: %v", err)
	}
	if _, err := l.ListPage(context.Background(), ""); err == nil || !strings.Contains(err.Error(), "data/missing.csv") {
		t.Errorf("err = %v, want missing file error", err)
	}

	if _, err := NewLister(api, &Manifest{DestinationBucket: "inv", FileSchema: "Key, Size"}, "", 1); err == nil {
		t.Error("expected error for schema without LastModifiedDate")
	}
}

func TestLister_EmptyReport(t *testing.T) {
	l, err := NewLister(&fakeS3{}, &Manifest{DestinationBucket: "inv", FileSchema: "Key, Size, LastModifiedDate"}, "", 10)
	if err != nil {
		t.Fatalf("NewLister failed: %v", err)
	}

	page, err := l.ListPage(context.Background(), "")
	if err != nil {
		t.Fatalf("ListPage failed: %v", err)
	}
	if len(page.Records) != 0 || page.NextToken != "" {
		t.Errorf("page = %+v, want empty final page", page)
	}
}

func TestLister_Parquet(t *testing.T) {
	rows := []inventoryRow{
		{Key: "a.parquet", Size: 10, LastModified: 1_000},
		{Key: "b.parquet", Size: 20, LastModified: 2_000},
		{Key: "c.parquet", Size: 30, LastModified: 3_000},
	}
	data, err := os.ReadFile(writeParquet(t, rows))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	api := &fakeS3{objects: map[string][]byte{"inv/data/part-0.parquet": data}}
	m := &Manifest{DestinationBucket: "inv", FileFormat: "Parquet", Files: []ManifestFile{{Key: "data/part-0.parquet"}}}

	l, err := NewLister(api, m, "", 2)
	if err != nil {
		t.Fatalf("NewLister failed: %v", err)
	}
	defer l.Close()

	var recs []metrics.Record
	for _, p := range drain(t, l) {
		recs = append(recs, p.Records...)
	}
	if len(recs) != 3 || recs[2].Key != "c.parquet" || recs[2].Size != 30 {
		t.Fatalf("records = %+v", recs)
	}
	if !recs[1].LastModified.Equal(time.UnixMilli(2_000)) {
		t.Errorf("LastModified = %v, want %v", recs[1].LastModified, time.UnixMilli(2_000))
	}
}
