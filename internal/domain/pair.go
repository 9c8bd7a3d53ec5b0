package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxLabelLength is the maximum number of characters in a category label.
const MaxLabelLength = 50

// pairKeySeparator joins the two labels of a pair into its summary key.
const pairKeySeparator = " / "

// CategoryPair is two mutually exclusive labels a text item is scored against.
type CategoryPair struct {
	Class1 string `json:"class1"`
	Class2 string `json:"class2"`
}

// NewCategoryPair trims both labels and validates the result.
func NewCategoryPair(class1, class2 string) (CategoryPair, error) {
	pair := CategoryPair{
		Class1: strings.TrimSpace(class1),
		Class2: strings.TrimSpace(class2),
	}

	verr := &ValidationError{}
	pair.validate("", verr)
	if verr.HasErrors() {
		return CategoryPair{}, verr
	}
	return pair, nil
}

// Key returns the summary key of the pair, "class1 / class2".
func (p CategoryPair) Key() string {
	return p.Class1 + pairKeySeparator + p.Class2
}

// Labels returns the two labels in classifier order.
func (p CategoryPair) Labels() [2]string {
	return [2]string{p.Class1, p.Class2}
}

// Validate checks that both labels are present and within bounds.
func (p CategoryPair) Validate() error {
	verr := &ValidationError{}
	p.validate("", verr)
	if verr.HasErrors() {
		return verr
	}
	return nil
}

func (p CategoryPair) validate(prefix string, verr *ValidationError) {
	validateLabel(prefix+"class1", p.Class1, verr)
	validateLabel(prefix+"class2", p.Class2, verr)
}

func validateLabel(field, label string, verr *ValidationError) {
	if strings.TrimSpace(label) == "" {
		verr.Add(field, "must not be empty")
		return
	}
	if utf8.RuneCountInString(label) > MaxLabelLength {
		verr.Add(field, fmt.Sprintf("must be at most %d characters", MaxLabelLength))
	}
}
