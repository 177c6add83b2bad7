package models

// Post represents one feed entry after body extraction.
//
// Fields:
//   - Title: post title as published.
//   - Author: display name of the original poster.
//   - DatePosted: ISO-8601 creation timestamp exactly as the feed returned it.
//     It is parsed by the transform stage, which fails the run when it is malformed.
//   - Link: public URL of the post.
//   - HTMLBody: raw HTML description, with attachment links appended.
//   - FileLink: first attachment URL found in the body, if any.
//   - RawText: level/separator lines extracted from the body (or the attachment
//     content). Empty means the post carries no level text.
type Post struct {
	Title      string
	Author     string
	DatePosted string
	Link       string
	HTMLBody   string
	FileLink   string
	RawText    string
}

// HasText reports whether the post carries extracted level text.
func (p Post) HasText() bool {
	return p.RawText != ""
}
