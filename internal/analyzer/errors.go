package analyzer

import "errors"

// Ошибки analyzer'ов.
var (
	// ErrUnknownStrategy — стратегия не зарегистрирована.
	ErrUnknownStrategy = errors.New("unknown analyzer strategy")

	// ErrInvalidConfig — невалидная конфигурация analyzer'а.
	// Ошибки этого класса не ретраятся: повтор с той же конфигурацией
	// детерминированно упадёт снова.
	ErrInvalidConfig = errors.New("invalid analyzer config")

	// ErrBadOutput — внешний инструмент вернул непарсибельный вывод.
	ErrBadOutput = errors.New("analyzer output is not valid findings JSON")
)
