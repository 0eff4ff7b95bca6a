package models

// ResourceLink is an entry of the resource index. URL is empty for
// references without a link, such as book titles.
type ResourceLink struct {
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	Category string `json:"category"`
}
