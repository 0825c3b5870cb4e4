// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "slices"

// User is the account resident on the device. Username and email are both login keys.
type User struct {
	Username     string   `json:"username" validate:"required"`
	Email        string   `json:"email" validate:"required"`
	Password     string   `json:"password" validate:"required"` // Stored as typed unless bcrypt hashing is configured.
	FirstName    string   `json:"firstName,omitempty"`
	LastName     string   `json:"lastName,omitempty"`
	Image        string   `json:"image,omitempty"`
	Course       string   `json:"course,omitempty"`
	Year         string   `json:"year,omitempty"`
	Department   string   `json:"department,omitempty"`
	RewardPoints int      `json:"rewardPoints" validate:"min=0"`
	LikedPosts   []string `json:"likedPosts"` // Ordered set of post IDs the user has liked.
}

// HasLiked reports whether postID is in the user's liked set.
func (u *User) HasLiked(postID string) bool {
	return slices.Contains(u.LikedPosts, postID)
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	cloned := *u
	cloned.LikedPosts = slices.Clone(u.LikedPosts)
	if cloned.LikedPosts == nil {
		cloned.LikedPosts = []string{}
	}

	return &cloned
}

// Normalize repairs the liked set loaded from storage: nil becomes empty and duplicates are dropped.
func (u *User) Normalize() {
	seen := make(map[string]struct{}, len(u.LikedPosts))
	liked := make([]string, 0, len(u.LikedPosts))
	for _, id := range u.LikedPosts {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		liked = append(liked, id)
	}
	u.LikedPosts = liked
}
