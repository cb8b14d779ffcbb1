package template

import "errors"

// Library precondition errors surfaced to decode callers.
var (
	// ErrTrainingNotFinished is returned when a library is used for
	// decoding before Finish has been called on its trainer.
	ErrTrainingNotFinished = errors.New("training not finished")

	// ErrNoTemplates is returned when a trained library holds no
	// averaged templates.
	ErrNoTemplates = errors.New("no averaged templates available")

	// ErrInvalidClass is returned for a class index outside the library.
	ErrInvalidClass = errors.New("invalid class index")
)
