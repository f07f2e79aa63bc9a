package planning

import "errors"

var (
	// ErrValidation — некорректный вход, до хранилища не дошли.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition — переход, запрещённый таблицей статусов.
	// Это ошибка программирования вызывающей стороны, не бизнес-исход.
	ErrInvalidTransition = errors.New("invalid plan status transition")

	// ErrConcurrencyConflict — план изменился под нами (параллельное
	// завершение). Вызывающий перечитывает план и повторяет переход сам.
	ErrConcurrencyConflict = errors.New("plan changed concurrently, retry")

	// ErrNotAuthorized — актор не вправе утверждать планы.
	ErrNotAuthorized = errors.New("actor is not allowed to approve")

	// ErrPlanNotFound — плана нет.
	ErrPlanNotFound = errors.New("plan not found")
)
