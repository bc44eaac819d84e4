// Package grader decides whether a submitted answer matches a challenge and
// how that outcome moves the challenge.
package grader

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go_phrase_texter/internal/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrMissingContext means an attempt reached grading without its query or challenge.
	ErrMissingContext = errors.New("grader: attempt has no query or challenge")
	// ErrChallengeNotQuizzable means the challenge is still queued.
	ErrChallengeNotQuizzable = errors.New("grader: challenge is not active or complete")
)

// Result is the outcome of grading one submission.
type Result struct {
	Expected     string
	Correct      bool
	ResultStatus model.ResultStatus
}

// Grade compares text against the expected answer for query and classifies
// the outcome using the challenge state before any streak change.
func Grade(query *model.Query, challenge *model.Challenge, text string) (Result, error) {
	if query == nil || challenge == nil {
		return Result{}, ErrMissingContext
	}
	if query.ChallengeID != challenge.ChallengeID {
		return Result{}, fmt.Errorf("%w: query %s belongs to challenge %s, not %s",
			ErrMissingContext, query.QueryID, query.ChallengeID, challenge.ChallengeID)
	}

	expected := ExpectedAnswer(challenge, query.Language)
	correct := Matches(expected, text)
	status, err := ComputeResultStatus(correct, challenge)
	if err != nil {
		return Result{}, err
	}
	return Result{Expected: expected, Correct: correct, ResultStatus: status}, nil
}

// ExpectedAnswer returns the challenge text in the language that was not asked.
func ExpectedAnswer(challenge *model.Challenge, asked model.QueryLanguage) string {
	if asked == model.LanguageNative {
		return challenge.LearningLanguageText
	}
	return challenge.NativeLanguageText
}

// IsCorrect reports whether text answers a query asked in the given language.
func IsCorrect(challenge *model.Challenge, asked model.QueryLanguage, text string) bool {
	return Matches(ExpectedAnswer(challenge, asked), text)
}

// Matches compares two answers after normalization.
func Matches(expected, submitted string) bool {
	return Normalize(expected) == Normalize(submitted)
}

// ComputeResultStatus is a pure function of correctness and the challenge's
// status and streak, evaluated before the streak is incremented.
func ComputeResultStatus(correct bool, challenge *model.Challenge) (model.ResultStatus, error) {
	if challenge == nil {
		return "", ErrMissingContext
	}

	switch challenge.Status {
	case model.StatusActive:
		if !correct {
			return model.ResultIncorrectActive, nil
		}
		if challenge.CurrentStreak+1 >= challenge.RequiredStreakForCompletion {
			return model.ResultCorrectActiveSufficient, nil
		}
		return model.ResultCorrectActiveInsufficient, nil
	case model.StatusComplete:
		if correct {
			return model.ResultCorrectComplete, nil
		}
		return model.ResultIncorrectComplete, nil
	case model.StatusQueued:
		return "", ErrChallengeNotQuizzable
	default:
		return "", fmt.Errorf("grader: unknown challenge status %q", challenge.Status)
	}
}

// contractions are matched on whole words after case folding. Apostrophes are
// already unified to U+0027.
var contractions = []struct{ from, to string }{
	{"won't", "will not"},
	{"can't", "cannot"},
	{"shan't", "shall not"},
	{"let's", "let us"},
	{"what's", "what is"},
	{"where's", "where is"},
	{"when's", "when is"},
	{"who's", "who is"},
	{"how's", "how is"},
	{"that's", "that is"},
	{"there's", "there is"},
	{"here's", "here is"},
	{"it's", "it is"},
	{"he's", "he is"},
	{"she's", "she is"},
	{"i'm", "i am"},
}

var suffixContractions = []struct{ from, to string }{
	{"n't", " not"},
	{"'re", " are"},
	{"'ll", " will"},
	{"'ve", " have"},
	{"'d", " would"},
}

// Normalize folds case, expands contractions and drops punctuation so that
// "What's your name?" and "what is your name" compare equal. It is idempotent.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	// Casers are stateful, so one per call.
	s = cases.Fold().String(s)
	// Folding can leave marks decomposed ("ß\u0301" becomes "ss\u0301").
	s = norm.NFC.String(s)
	s = strings.Map(unifyApostrophe, s)

	words := strings.Fields(s)
	for i, w := range words {
		words[i] = expandContraction(w)
	}
	s = strings.Join(words, " ")

	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, s)
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

func unifyApostrophe(r rune) rune {
	switch r {
	case '’', '‘', 'ʼ', '`', '´':
		return '\''
	}
	return r
}

func expandContraction(word string) string {
	core := strings.TrimFunc(word, func(r rune) bool {
		return r != '\'' && (unicode.IsPunct(r) || unicode.IsSymbol(r))
	})
	if core == "" {
		return word
	}
	for _, c := range contractions {
		if core == c.from {
			return strings.Replace(word, core, c.to, 1)
		}
	}
	for _, c := range suffixContractions {
		if strings.HasSuffix(core, c.from) && len(core) > len(c.from) {
			expanded := strings.TrimSuffix(core, c.from) + c.to
			return strings.Replace(word, core, expanded, 1)
		}
	}
	return word
}
