package repo

// TokenStore — хранилище auth-токена (JWT из cookie сервера) на клиенте.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	// Clear удаляет токен при выходе.
	Clear() error
}
