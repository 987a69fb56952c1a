/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package option

import "strconv"

// RangeConstraint rejects any element of a Value that does not parse
// as an integer within [Min, Max]. Grounded on the "range[1..65535]"
// constraint spec.md §8 scenario 2 exercises for a numeric option
// like a TCP port.
type RangeConstraint struct {
	Min, Max int
}

func (r RangeConstraint) Name() string { return "range" }

func (r RangeConstraint) Valid(v Value) bool {
	for _, e := range v.Elements() {
		n, err := strconv.Atoi(e)
		if err != nil || n < r.Min || n > r.Max {
			return false
		}
	}
	return true
}

// NonEmptyConstraint rejects a Value having any zero-length element.
type NonEmptyConstraint struct{}

func (NonEmptyConstraint) Name() string { return "nonempty" }

func (NonEmptyConstraint) Valid(v Value) bool {
	for _, e := range v.Elements() {
		if e == "" {
			return false
		}
	}
	return true
}
