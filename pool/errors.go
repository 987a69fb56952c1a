/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package pool

import "github.com/RolandTaverner/PraeTor-sub000/errors"

const Category errors.Category = "PoolErrors"

const (
	CapacityExceeded errors.Code = iota + errors.MinPool + 1
)

func init() {
	errors.RegisterCategory(Category, message)
}

func message(code errors.Code) string {
	switch code {
	case CapacityExceeded:
		return "Connection pool is at capacity."
	default:
		return ""
	}
}

// Err is a convenience constructor for this package's errors.
func Err(code errors.Code, extra string) errors.Error {
	return errors.New(Category, code, extra)
}
