/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package asynchttp

import "github.com/RolandTaverner/PraeTor-sub000/errors"

const Category errors.Category = "HttpClientErrors"

const (
	InternalError errors.Code = iota + errors.MinHttpClient + 1
	RequestCanceled
	RequestTimedOut
)

func init() {
	errors.RegisterCategory(Category, message)
}

func message(code errors.Code) string {
	switch code {
	case InternalError:
		return "Internal HTTP client error."
	case RequestCanceled:
		return "Request was canceled."
	case RequestTimedOut:
		return "Request timed out."
	default:
		return ""
	}
}

func Err(code errors.Code, extra string) errors.Error {
	return errors.New(Category, code, extra)
}
