package domain

import "time"

// Ключ метаданных для связи Customer с внешним идентификатором пользователя
const MetadataUserIDKey = "user_id"

// Customer представляет собой модель клиента
type Customer struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	Name      string            `json:"name,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// UserID возвращает внешний идентификатор пользователя из метаданных
func (c Customer) UserID() string {
	if c.Metadata == nil {
		return ""
	}
	return c.Metadata[MetadataUserIDKey]
}

// CustomerRequest представляет запрос на создание клиента
type CustomerRequest struct {
	Email    string            `json:"email" binding:"required,email"`
	Name     string            `json:"name,omitempty"`
	UserID   string            `json:"user_id,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
