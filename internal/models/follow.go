package models

// FollowRelationship is a directed edge: follower_id follows user_id's circles.
type FollowRelationship struct {
	FollowerID int64 `json:"follower_id"`
	UserID     int64 `json:"user_id"`
}
