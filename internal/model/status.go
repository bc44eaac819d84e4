// internal/model/status.go
package model

import (
	"database/sql/driver"
	"fmt"
)

// ChallengeStatus is the lifecycle state of a Challenge.
type ChallengeStatus string

const (
	StatusQueued   ChallengeStatus = "queued"
	StatusActive   ChallengeStatus = "active"
	StatusComplete ChallengeStatus = "complete"
)

func (s ChallengeStatus) Valid() bool {
	switch s {
	case StatusQueued, StatusActive, StatusComplete:
		return true
	}
	return false
}

func (s ChallengeStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid challenge status %q", string(s))
	}
	return string(s), nil
}

func (s *ChallengeStatus) Scan(src any) error {
	v, err := scanString(src)
	if err != nil {
		return err
	}
	*s = ChallengeStatus(v)
	if !s.Valid() {
		return fmt.Errorf("invalid challenge status %q", v)
	}
	return nil
}

// QueryLanguage is the language a query is asked in. The expected answer is
// always the other one.
type QueryLanguage string

const (
	LanguageLearning QueryLanguage = "learning_language"
	LanguageNative   QueryLanguage = "native_language"
)

func (l QueryLanguage) Valid() bool {
	return l == LanguageLearning || l == LanguageNative
}

func (l QueryLanguage) Value() (driver.Value, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid query language %q", string(l))
	}
	return string(l), nil
}

func (l *QueryLanguage) Scan(src any) error {
	v, err := scanString(src)
	if err != nil {
		return err
	}
	*l = QueryLanguage(v)
	if !l.Valid() {
		return fmt.Errorf("invalid query language %q", v)
	}
	return nil
}

// ResultStatus classifies a graded attempt against the challenge state at
// grading time.
type ResultStatus string

const (
	ResultCorrectActiveInsufficient ResultStatus = "correct_active_insufficient"
	ResultCorrectActiveSufficient   ResultStatus = "correct_active_sufficient"
	ResultCorrectComplete           ResultStatus = "correct_complete"
	ResultIncorrectActive           ResultStatus = "incorrect_active"
	ResultIncorrectComplete         ResultStatus = "incorrect_complete"
)

func (r ResultStatus) Valid() bool {
	switch r {
	case ResultCorrectActiveInsufficient, ResultCorrectActiveSufficient, ResultCorrectComplete,
		ResultIncorrectActive, ResultIncorrectComplete:
		return true
	}
	return false
}

func (r ResultStatus) Correct() bool {
	switch r {
	case ResultCorrectActiveInsufficient, ResultCorrectActiveSufficient, ResultCorrectComplete:
		return true
	}
	return false
}

func (r ResultStatus) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid result status %q", string(r))
	}
	return string(r), nil
}

func (r *ResultStatus) Scan(src any) error {
	v, err := scanString(src)
	if err != nil {
		return err
	}
	*r = ResultStatus(v)
	if !r.Valid() {
		return fmt.Errorf("invalid result status %q", v)
	}
	return nil
}

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("cannot scan %T into string enum", src)
	}
}
