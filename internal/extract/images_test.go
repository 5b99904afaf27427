package extract

import (
	"testing"

	"github.com/newsprowl/newsprowl/internal/types"
)

const articleURL = "https://www.nrinow.news/2024/03/test-story/"

func extractImages(t *testing.T, html string) []types.ImageRecord {
	t.Helper()
	page := types.NewFetchedPage(articleURL, html)
	doc, err := page.Document()
	if err != nil {
		t.Fatal(err)
	}
	ie := NewImageExtractor(testLogger)
	return ie.Extract(page, doc)
}

func TestImageExtractorFeaturedAndDedup(t *testing.T) {
	// The featured image also appears in the content; it must come back once,
	// plus the second content image.
	images := extractImages(t, `<html><head>
		<meta property="og:image" content="https://www.nrinow.news/wp-content/uploads/hero.jpg">
	</head><body>
		<img src="https://www.nrinow.news/wp-content/uploads/hero.jpg" alt="Hero">
		<img src="https://www.nrinow.news/wp-content/uploads/chart.png" alt="Chart">
	</body></html>`)

	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d: %+v", len(images), images)
	}
	if images[0].AltText != "Featured Image" || images[0].TitleText != "Featured Image" {
		t.Errorf("expected featured sentinels, got %+v", images[0])
	}
	if images[1].AltText != "Chart" {
		t.Errorf("expected chart second, got %+v", images[1])
	}
}

func TestImageExtractorFeaturedOpenGraphWins(t *testing.T) {
	// Pages carry both social-preview metas for the same article; only the
	// Open Graph one becomes the featured record.
	images := extractImages(t, `<html><head>
		<meta property="og:image" content="https://www.nrinow.news/wp-content/uploads/og-hero.jpg">
		<meta name="twitter:image" content="https://www.nrinow.news/wp-content/uploads/tw-hero.jpg">
	</head><body></body></html>`)

	if len(images) != 1 {
		t.Fatalf("expected a single featured image, got %d: %+v", len(images), images)
	}
	if images[0].SourceURL != "https://www.nrinow.news/wp-content/uploads/og-hero.jpg" {
		t.Errorf("expected the og:image URL, got %q", images[0].SourceURL)
	}
}

func TestImageExtractorFeaturedTwitterFallback(t *testing.T) {
	images := extractImages(t, `<html><head>
		<meta property="og:image" content="  ">
		<meta name="twitter:image" content="https://www.nrinow.news/wp-content/uploads/tw-hero.jpg">
	</head><body></body></html>`)

	if len(images) != 1 {
		t.Fatalf("expected a single featured image, got %d: %+v", len(images), images)
	}
	if images[0].SourceURL != "https://www.nrinow.news/wp-content/uploads/tw-hero.jpg" {
		t.Errorf("expected the twitter:image URL, got %q", images[0].SourceURL)
	}
}

func TestImageExtractorResolvesRelative(t *testing.T) {
	images := extractImages(t, `<html><body>
		<img src="//cdn.nrinow.news/a.jpg" alt="protocol relative">
		<img src="/wp-content/uploads/b.jpg" alt="root relative">
		<img data-src="/wp-content/uploads/lazy.jpg" alt="lazy">
	</body></html>`)

	want := []string{
		"https://cdn.nrinow.news/a.jpg",
		"https://www.nrinow.news/wp-content/uploads/b.jpg",
		"https://www.nrinow.news/wp-content/uploads/lazy.jpg",
	}
	if len(images) != len(want) {
		t.Fatalf("expected %d images, got %d: %+v", len(want), len(images), images)
	}
	for i, u := range want {
		if images[i].SourceURL != u {
			t.Errorf("image %d: expected %q, got %q", i, u, images[i].SourceURL)
		}
	}
}

func TestImageExtractorFilters(t *testing.T) {
	images := extractImages(t, `<html><body>
		<img src="/uploads/pixel.gif" width="1" height="1" alt="tracker">
		<img src="/uploads/thumb.jpg" width="49" height="200" alt="small side">
		<img src="/uploads/nodims.jpg" alt="no dimensions">
		<img src="/uploads/big.jpg" width="800" height="600" alt="big">
		<img src="/images/emoji-smile.png" alt="emoji">
		<img src="/uploads/face.jpg" class="avatar gravatar" alt="avatar">
		<img src="/uploads/print.jpg" class="printfriendly-button" alt="print">
	</body></html>`)

	if len(images) != 2 {
		t.Fatalf("expected 2 images to survive, got %d: %+v", len(images), images)
	}
	if images[0].AltText != "no dimensions" || images[1].AltText != "big" {
		t.Errorf("wrong survivors: %+v", images)
	}
}

func TestImageExtractorCaption(t *testing.T) {
	images := extractImages(t, `<html><body>
		<figure>
			<img src="/uploads/scene.jpg" alt="scene">
			<figcaption>Flood waters on Main Street</figcaption>
		</figure>
		<div>
			<img src="/uploads/park.jpg" alt="park">
			<br>
			<p class="wp-caption-text">New playground opens</p>
		</div>
	</body></html>`)

	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if images[0].Caption != "Flood waters on Main Street" {
		t.Errorf("expected figcaption, got %q", images[0].Caption)
	}
	// The caption sits two siblings away; anywhere in the image's container
	// counts.
	if images[1].Caption != "New playground opens" {
		t.Errorf("expected container caption, got %q", images[1].Caption)
	}
}

func TestImageExtractorScopedToContentAreas(t *testing.T) {
	// With a recognized content container on the page, images outside every
	// such container are ignored.
	images := extractImages(t, `<html><body>
		<div class="td-post-content">
			<img src="/uploads/inside.jpg" alt="inside">
		</div>
		<footer>
			<img src="/uploads/outside.jpg" alt="outside">
		</footer>
	</body></html>`)

	if len(images) != 1 || images[0].AltText != "inside" {
		t.Fatalf("expected only the in-content image, got %+v", images)
	}
}

func TestImageExtractorWholePageFallback(t *testing.T) {
	// No recognized content container anywhere: every image on the page is a
	// candidate.
	images := extractImages(t, `<html><body>
		<div class="some-wrapper">
			<img src="/uploads/a.jpg" alt="a">
		</div>
		<img src="/uploads/b.jpg" alt="b">
	</body></html>`)

	if len(images) != 2 {
		t.Fatalf("expected both images, got %+v", images)
	}
}
