// Package handler contains the HTTP handlers for the application.
package handler

import (
	"campus/internal/domain/entity"
	"campus/internal/usecase"
)

// UserView is the user as returned over HTTP. The stored password never leaves the process.
type UserView struct {
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	FirstName    string   `json:"firstName,omitempty"`
	LastName     string   `json:"lastName,omitempty"`
	Image        string   `json:"image,omitempty"`
	Course       string   `json:"course,omitempty"`
	Year         string   `json:"year,omitempty"`
	Department   string   `json:"department,omitempty"`
	RewardPoints int      `json:"rewardPoints"`
	LikedPosts   []string `json:"likedPosts"`
}

// SnapshotView mirrors usecase.Snapshot with the user redacted.
type SnapshotView struct {
	CurrentUser *UserView       `json:"currentUser"`
	Posts       []entity.Post   `json:"posts"`
	Rewards     []entity.Reward `json:"rewards"`
}

func newUserView(user *entity.User) *UserView {
	if user == nil {
		return nil
	}

	liked := user.LikedPosts
	if liked == nil {
		liked = []string{}
	}

	return &UserView{
		Username:     user.Username,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Image:        user.Image,
		Course:       user.Course,
		Year:         user.Year,
		Department:   user.Department,
		RewardPoints: user.RewardPoints,
		LikedPosts:   liked,
	}
}

func newSnapshotView(snapshot usecase.Snapshot) SnapshotView {
	return SnapshotView{
		CurrentUser: newUserView(snapshot.CurrentUser),
		Posts:       snapshot.Posts,
		Rewards:     snapshot.Rewards,
	}
}
