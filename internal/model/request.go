package model

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type UpdateProfileRequest struct {
	Email string `json:"email"`
}

type CreateTopicRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateTopicRequest is a partial update; nil fields are left untouched.
type UpdateTopicRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type CreatePostRequest struct {
	Content string `json:"content"`
}
