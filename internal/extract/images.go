package extract

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsprowl/newsprowl/internal/types"
)

// minImageDim filters out tracking pixels and thumbnails. The filter only
// applies when both dimension attributes are present and parseable; images
// without declared dimensions pass through.
const minImageDim = 50

// imageDenylist marks decorative and third-party images by URL or class
// substring.
var imageDenylist = []string{
	"emoji",
	"printfriendly",
	"gravatar",
	"icon-",
	"button",
}

// ImageExtractor collects article images: the social-preview featured image
// plus every content image, deduplicated by resolved URL.
type ImageExtractor struct {
	logger *slog.Logger
}

// NewImageExtractor creates an image extractor.
func NewImageExtractor(logger *slog.Logger) *ImageExtractor {
	return &ImageExtractor{
		logger: logger.With("component", "image_extractor"),
	}
}

// contentAreas are the containers content images are confined to when any
// exist on the page; otherwise the whole page is scanned.
const contentAreas = ".pf-content, .td-post-content, .entry-content, article"

// Extract returns the images on an article page, featured image first.
func (ie *ImageExtractor) Extract(page *types.FetchedPage, doc *goquery.Document) []types.ImageRecord {
	var images []types.ImageRecord
	seen := make(map[string]bool)

	// Featured image from social-preview metadata. Open Graph wins; the
	// Twitter card is consulted only when og:image is absent or empty.
	for _, sel := range []string{
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
	} {
		content, ok := doc.Find(sel).First().Attr("content")
		if !ok || strings.TrimSpace(content) == "" {
			continue
		}
		if resolved := ie.resolve(content, page.URL); resolved != "" && !seen[resolved] {
			seen[resolved] = true
			images = append(images, types.ImageRecord{
				SourceURL: resolved,
				AltText:   "Featured Image",
				TitleText: "Featured Image",
			})
		}
		break
	}

	scope := doc.Selection
	if areas := doc.Find(contentAreas); areas.Length() > 0 {
		scope = areas
	}

	scope.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			// Lazy loaders park the real URL in data-src.
			src, ok = img.Attr("data-src")
			if !ok || strings.TrimSpace(src) == "" {
				return
			}
		}

		resolved := ie.resolve(src, page.URL)
		if resolved == "" || seen[resolved] {
			return
		}

		class, _ := img.Attr("class")
		if denied(resolved, class) {
			return
		}

		width, _ := img.Attr("width")
		height, _ := img.Attr("height")
		if tooSmall(width, height) {
			return
		}

		seen[resolved] = true
		images = append(images, types.ImageRecord{
			SourceURL:  resolved,
			AltText:    img.AttrOr("alt", ""),
			TitleText:  img.AttrOr("title", ""),
			Width:      width,
			Height:     height,
			CSSClasses: class,
			Caption:    caption(img),
		})
	})

	ie.logger.Debug("images extracted", "url", page.URL, "count", len(images))
	return images
}

// resolve makes an image URL absolute against the article URL. Handles
// protocol-relative (//cdn...) and root-relative (/wp-content/...) forms.
func (ie *ImageExtractor) resolve(src, pageURL string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// denied checks URL and class against the denylist.
func denied(resolvedURL, class string) bool {
	lowerURL := strings.ToLower(resolvedURL)
	lowerClass := strings.ToLower(class)
	for _, marker := range imageDenylist {
		if strings.Contains(lowerURL, marker) || strings.Contains(lowerClass, marker) {
			return true
		}
	}
	return false
}

// tooSmall rejects images only when both declared dimensions parse and
// either falls below the minimum.
func tooSmall(width, height string) bool {
	w, werr := strconv.Atoi(strings.TrimSpace(width))
	h, herr := strconv.Atoi(strings.TrimSpace(height))
	if werr != nil || herr != nil {
		return false
	}
	return w < minImageDim || h < minImageDim
}

// caption finds the text associated with an image: a figcaption within the
// enclosing figure, otherwise any caption-classed element in the image's
// immediate container.
func caption(img *goquery.Selection) string {
	if fig := img.Closest("figure"); fig.Length() > 0 {
		if text := strings.TrimSpace(fig.Find("figcaption").First().Text()); text != "" {
			return normalizeWhitespace(text)
		}
	}
	if parent := img.Parent(); parent.Length() > 0 {
		if text := strings.TrimSpace(parent.Find("[class*='caption']").First().Text()); text != "" {
			return normalizeWhitespace(text)
		}
	}
	return ""
}
