package repo

// UserContextStore хранит email активного пользователя: по нему выбирается локальный каталог
// и метка последней синхронизации.
type UserContextStore interface {
	SaveLogin(email string) error
	LoadLogin() (string, error)
}
