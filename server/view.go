package server

import (
	"encoding/json"
	"time"

	"github.com/bacon13/picfeed/model"
	"github.com/jinzhu/copier"
)

// postView is the wire shape of a post. The storage model and the wire shape
// share field names, copier maps one onto the other.
type postView struct {
	Id           string    `json:"id"`
	OwnerId      string    `json:"ownerId"`
	ImageLocator string    `json:"imageLocator"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type pageView struct {
	Items      []postView `json:"items"`
	NextCursor *string    `json:"nextCursor"`
}

type userView struct {
	Id            string    `json:"id"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	ProfileImages []string  `json:"profileImages"`
}

func toPostView(post *model.Post) postView {
	var view postView
	copier.Copy(&view, post)
	return view
}

func toPageView(page *model.PostPage) pageView {
	items := make([]postView, 0, len(page.Items))
	for _, post := range page.Items {
		items = append(items, toPostView(post))
	}
	return pageView{Items: items, NextCursor: page.NextCursor}
}

func toUserView(user *model.User) userView {
	var view userView
	copier.Copy(&view, user)
	view.ProfileImages = []string{}
	if len(user.ProfileImages) > 0 {
		json.Unmarshal(user.ProfileImages, &view.ProfileImages)
	}
	return view
}
