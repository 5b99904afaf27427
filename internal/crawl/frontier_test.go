package crawl

import "testing"

func TestFrontierAdmitAndOrder(t *testing.T) {
	f := NewFrontier()

	if !f.Admit("https://www.nrinow.news/2024/03/story-a/") {
		t.Error("first admission should succeed")
	}
	if !f.Admit("https://www.nrinow.news/2024/03/story-b/") {
		t.Error("second admission should succeed")
	}
	if f.Admit("https://www.nrinow.news/2024/03/story-a/") {
		t.Error("repeat admission should fail")
	}

	urls := f.URLs()
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %d", len(urls))
	}
	if urls[0] != "https://www.nrinow.news/2024/03/story-a/" {
		t.Errorf("admission order not preserved: %v", urls)
	}
}

func TestFrontierCanonicalVariants(t *testing.T) {
	f := NewFrontier()
	f.Admit("https://www.nrinow.news/2024/03/story/")

	variants := []string{
		"https://www.nrinow.news/2024/03/story",
		"https://WWW.NRINOW.NEWS/2024/03/story/",
		"https://www.nrinow.news/2024/03/story/#comments",
		"https://www.nrinow.news:443/2024/03/story/",
	}
	for _, v := range variants {
		if f.Admit(v) {
			t.Errorf("variant admitted as new: %q", v)
		}
		if !f.Contains(v) {
			t.Errorf("variant not recognized: %q", v)
		}
	}
	if f.Len() != 1 {
		t.Errorf("expected 1 admitted url, got %d", f.Len())
	}
}

func TestCanonicalizeURLQuerySorting(t *testing.T) {
	a := CanonicalizeURL("https://www.nrinow.news/?s=tax&page=2")
	b := CanonicalizeURL("https://www.nrinow.news/?page=2&s=tax")
	if a != b {
		t.Errorf("query order should not matter: %q vs %q", a, b)
	}
}
