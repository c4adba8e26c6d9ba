package utils

import (
	"errors"
	"net/mail"
)

var (
	ErrEmailEmpty   = errors.New("email не указан")
	ErrEmailInvalid = errors.New("некорректный email")

	ErrPasswordEmpty   = errors.New("пароль не указан")
	ErrPasswordTooLong = errors.New("пароль длиннее 72 символов")
)

func ValidateEmail(e string) error {
	if e == "" {
		return ErrEmailEmpty
	}
	if _, err := mail.ParseAddress(e); err != nil {
		return ErrEmailInvalid
	}
	return nil
}

// ValidatePassword проверяет только пустоту и верхнюю границу:
// 72 байта — ограничение входа bcrypt. Политику сложности пароля
// исходный сервис не задавал.
func ValidatePassword(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}
	if len(p) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}
