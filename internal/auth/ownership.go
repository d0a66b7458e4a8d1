package auth

import "go-forum/internal/model"

// CanMutate reports whether requester may edit or delete topic.
func CanMutate(topic model.Topic, requester string) bool {
	return requester != "" && topic.OwnerUsername == requester
}

func CanDeletePost(post model.Post, requester string) bool {
	return requester != "" && post.AuthorUsername == requester
}
