// Package address validates postal addresses against a static reference dataset.
package address

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Result is the outcome of an address validation.
type Result struct {
	IsValid bool
	Message string
}

// Validator checks a state, city and postal code combination.
type Validator interface {
	Validate(state, city, postalCode string) Result
	States() map[string][]string
}

// StaticValidator validates against the compiled-in dataset.
type StaticValidator struct {
	data map[string]stateData
}

func NewStaticValidator() *StaticValidator {
	return &StaticValidator{data: postalData}
}

func (v *StaticValidator) Validate(state, city, postalCode string) Result {
	sd, ok := v.data[state]
	if !ok {
		return invalid("Invalid state selected.")
	}

	prefixes, ok := sd.cities[city]
	if !ok {
		return invalid("Invalid city for the selected state.")
	}

	code, err := strconv.Atoi(postalCode)
	if len(postalCode) != 6 || err != nil || code < 0 {
		return invalid("Postal code must be a 6-digit number.")
	}

	inState := false
	for _, r := range sd.ranges {
		if code >= r.min && code <= r.max {
			inState = true
			break
		}
	}
	if !inState {
		starts := make([]string, 0, len(sd.ranges))
		for _, r := range sd.ranges {
			starts = append(starts, strconv.Itoa(r.min)[:2])
		}
		return invalid(fmt.Sprintf(
			"Postal code %s does not seem to belong to %s (usually starts with %s).",
			postalCode, state, strings.Join(starts, " or "),
		))
	}

	for _, p := range prefixes {
		if strings.HasPrefix(postalCode, p) {
			return Result{IsValid: true}
		}
	}

	return invalid(fmt.Sprintf(
		"Postal code %s does not match the usual codes for %s (starts with %s).",
		postalCode, city, strings.Join(prefixes, ", "),
	))
}

// States returns the known states with their cities in alphabetical order.
func (v *StaticValidator) States() map[string][]string {
	out := make(map[string][]string, len(v.data))
	for state, sd := range v.data {
		cities := make([]string, 0, len(sd.cities))
		for city := range sd.cities {
			cities = append(cities, city)
		}
		sort.Strings(cities)
		out[state] = cities
	}
	return out
}

func invalid(msg string) Result {
	return Result{IsValid: false, Message: msg}
}
