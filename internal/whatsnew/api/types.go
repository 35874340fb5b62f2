package api

// Person is an author or repository shown alongside an update.
type Person struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Update is a single changelog item.
type Update struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Summary     string  `json:"summary"`
	PublishedAt string  `json:"publishedAt"`
	URL         string  `json:"url"`
	Author      *Person `json:"author,omitempty"`
	Repository  *Person `json:"repository,omitempty"`
}

// RepositoryInfo describes the repository the updates belong to.
type RepositoryInfo struct {
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Avatar string `json:"avatar,omitempty"`
}

// Response is the body returned by the what's-new endpoint.
type Response struct {
	Updates    []Update       `json:"updates"`
	Repository RepositoryInfo `json:"repository"`
}

// Latest returns the first update, or nil when the response is empty.
func (r *Response) Latest() *Update {
	if r == nil || len(r.Updates) == 0 {
		return nil
	}
	u := r.Updates[0]
	return &u
}

// RepositoryName returns the display name of the repository an update
// belongs to, preferring the update's own metadata over the response's.
func (r *Response) RepositoryName(u *Update) string {
	if u != nil && u.Repository != nil && u.Repository.Name != "" {
		return u.Repository.Name
	}
	if r == nil {
		return ""
	}
	if r.Repository.Name != "" {
		return r.Repository.Name
	}
	return r.Repository.Slug
}
