package engine

import "errors"

// Ошибки валидации графа. Все они фатальны и возникают до начала
// выполнения — частичного отчёта для них не бывает.
var (
	// ErrEmptyGraph — граф не содержит reviewer'ов.
	ErrEmptyGraph = errors.New("graph has no reviewers")

	// ErrEmptyTaskID — reviewer без ID.
	ErrEmptyTaskID = errors.New("reviewer has empty ID")

	// ErrDuplicateTask — несколько reviewer'ов с одинаковым ID.
	ErrDuplicateTask = errors.New("duplicate reviewer ID")

	// ErrUnknownDependency — depends_on ссылается на несуществующий ID.
	ErrUnknownDependency = errors.New("reviewer depends on unknown reviewer")

	// ErrSelfDependency — reviewer зависит от самого себя.
	ErrSelfDependency = errors.New("reviewer depends on itself")

	// ErrCyclicDependency — обнаружен цикл в зависимостях.
	ErrCyclicDependency = errors.New("cyclic dependency detected")

	// ErrUnknownGroup — reviewer ссылается на необъявленную группу.
	ErrUnknownGroup = errors.New("reviewer references unknown group")

	// ErrDuplicateGroup — несколько групп с одинаковым именем.
	ErrDuplicateGroup = errors.New("duplicate group name")

	// ErrInvalidGroupMode — режим группы не parallel и не sequential.
	ErrInvalidGroupMode = errors.New("invalid group mode")

	// ErrGroupTimeout — таймаут группы меньше, чем требуют её участники.
	ErrGroupTimeout = errors.New("group timeout too small for members")

	// ErrInvalidTimeout — таймаут reviewer'а не положителен.
	ErrInvalidTimeout = errors.New("reviewer timeout must be positive")

	// ErrUnknownPredicate — имя предиката не зарегистрировано.
	ErrUnknownPredicate = errors.New("unknown predicate")

	// ErrUnknownRetryClass — retry-класс не critical и не optional.
	ErrUnknownRetryClass = errors.New("unknown retry class")

	// ErrUnknownDepth — запрошенный пресет глубины не объявлен в графе.
	ErrUnknownDepth = errors.New("unknown depth preset")

	// ErrUnknownAnalyzer — у reviewer'а не задана стратегия анализа.
	ErrUnknownAnalyzer = errors.New("reviewer has no analyzer strategy")
)

// ConfigError — ошибка конфигурации графа с контекстом.
type ConfigError struct {
	TaskID  string // ID reviewer'а, где произошла ошибка
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая sentinel-ошибка
}

// Error реализует интерфейс error.
func (e *ConfigError) Error() string {
	if e.TaskID != "" {
		return "reviewer " + e.TaskID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError создаёт новую ошибку конфигурации.
func NewConfigError(taskID, field, message string, err error) *ConfigError {
	return &ConfigError{
		TaskID:  taskID,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
