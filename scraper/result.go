package scraper

// FetchRequest is the input to a single page render.
type FetchRequest struct {
	// URL is the page to navigate to.
	URL string

	// Headers are extra HTTP headers sent with every request of the page.
	Headers map[string]string

	// Stealth injects anti-bot-detection evasions before navigation.
	Stealth bool

	// WaitFor is an optional CSS selector awaited after the load event.
	WaitFor string

	// BlockResources lists resource types to drop: image, stylesheet,
	// font or media.
	BlockResources []string

	// BlockAds drops requests to known ad and tracking hosts.
	BlockAds bool
}

// FetchResult is the rendered page.
type FetchResult struct {
	// HTML is the page source after the settle and scroll delays.
	HTML string

	// Title is the document title.
	Title string

	// FinalURL is the URL after redirects.
	FinalURL string
}
