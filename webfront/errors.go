/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package webfront

import "github.com/RolandTaverner/PraeTor-sub000/errors"

const Category errors.Category = "WebfrontErrors"

const (
	// ServerOverloaded is the synthetic error the admission gate
	// raises before dispatch when the in-flight cap is exceeded
	// (spec.md §4.C10 "Admission control").
	ServerOverloaded errors.Code = iota + errors.MinWebfront + 1
	MethodNotAllowed
	RouteNotFound
)

func init() {
	errors.RegisterCategory(Category, message)
}

func message(code errors.Code) string {
	switch code {
	case ServerOverloaded:
		return "Server is overloaded."
	case MethodNotAllowed:
		return "Method not allowed for this action."
	case RouteNotFound:
		return "Route not found."
	default:
		return ""
	}
}

func Err(code errors.Code, extra string) errors.Error {
	return errors.New(Category, code, extra)
}
