package model

import (
	"time"
)

/*

Post is a single image upload by a user

Id: primary key, UUID assigned by the repository at insert time
OwnerId: id of the uploading user, always taken from the verified session,
		never from the request body
ImageLocator: public URL of the uploaded image, resolved through the image
		store when the post is created; immutable once set
CreatedAt: server-assigned creation time, part of the feed sort key
UpdatedAt: equals CreatedAt on creation; posts have no edit operations today

Feed order is a total order on (CreatedAt desc, Id desc). The Id tiebreak
makes paging deterministic when two posts land on the same timestamp.
*/

type Post struct {
	Id           string `gorm:"primaryKey"`
	OwnerId      string `gorm:"index"`
	ImageLocator string
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}
