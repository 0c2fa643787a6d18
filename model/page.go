package model

// PostPage is one page of a feed query. NextCursor is nil when the page was
// not full, i.e. iteration has reached the posts that existed when it began.
type PostPage struct {
	Items      []*Post
	NextCursor *string
}
