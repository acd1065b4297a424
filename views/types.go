package views

// SiteConfig holds site-wide settings shown by every page.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image
	JSONLD      string
}

// ZoomConfig is handed to the browser's image zoom script. The script binds to
// Selector once per page load, and only when the viewport is wider than MinWidth.
type ZoomConfig struct {
	Selector        string  `json:"selector"`
	ScaleBase       float64 `json:"scaleBase"`
	BgOpacity       float64 `json:"bgOpacity"`
	ScrollThreshold int     `json:"scrollThreshold"`
	MinWidth        int     `json:"minWidth"`
}

// DefaultZoom returns the zoom settings used for post images.
func DefaultZoom() ZoomConfig {
	return ZoomConfig{
		Selector:        ".zoomable",
		ScaleBase:       0.8,
		BgOpacity:       0.6,
		ScrollThreshold: 10,
		MinWidth:        600,
	}
}
