package models

import "time"

// Author is the embedded user reference carried by a post.
type Author struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

type Post struct {
	ID           string    `json:"_id"`
	Content      string    `json:"content"`
	Author       Author    `json:"author"`
	Likes        []string  `json:"likes,omitempty"`
	LikeCount    int       `json:"likeCount"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TotalLikes reports how many likes the post has. Some endpoints fill only the
// likes array, others only the counter.
func (p Post) TotalLikes() int {
	if p.LikeCount > 0 {
		return p.LikeCount
	}
	return len(p.Likes)
}

// LikedBy reports whether userID appears among the post's likes.
func (p Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

func (p Post) Clone() Post {
	c := p
	if p.Likes != nil {
		c.Likes = append([]string(nil), p.Likes...)
	}
	return c
}
