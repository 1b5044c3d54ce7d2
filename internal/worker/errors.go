package worker

import "errors"

// Ошибки обработки runs.
var (
	// ErrRunNotFound — run не найден в БД (возможно, удалён вместе с графом).
	ErrRunNotFound = errors.New("run not found")

	// ErrRunNotPending — run уже подхвачен другим worker'ом или завершён.
	ErrRunNotPending = errors.New("run is not pending")
)
