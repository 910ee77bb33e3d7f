package model

// Tab is a handle to one open browser tab as reported by the DevTools
// protocol: the target ID is what tab removal operates on.
type Tab struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}
