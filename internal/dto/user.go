package dto

import "github.com/yukikurage/workspace-api/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ToUserDTO converts a user model to DTO. The avatar is served through the
// relay rather than exposing the upstream URL.
func ToUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
	if user.AvatarURL != "" {
		dto.AvatarURL = "/api/users/" + user.ID + "/avatar"
	}
	return dto
}
