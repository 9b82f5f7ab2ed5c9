package util

import "errors"

var (
	ErrEpicNotFound     = errors.New("epic not found")
	ErrNoQuestions      = errors.New("no questions available for epic")
	ErrEmptyPackage     = errors.New("quiz package has no questions")
	ErrSessionNotActive = errors.New("no active quiz session")
	ErrSessionActive    = errors.New("a quiz session is already active")
	ErrInvalidOption    = errors.New("answer option index out of range")
	ErrDeepDiveMissing  = errors.New("deep dive content not found")
)
