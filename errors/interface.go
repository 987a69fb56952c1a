/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package errors provides the closed, categorized error taxonomy shared by
// every component: a stable Category name plus a numeric Code, each code
// resolving to a canonical message via RegisterCategory. Handlers never
// invent new categories; the front-end projects (Category, Code) pairs to
// HTTP status codes from a fixed table (see webfront).
package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is a categorized, coded error value. It satisfies the standard
// error interface so it composes with fmt.Errorf/errors.Is/errors.As.
type Error interface {
	error

	Category() Category
	Code() Code

	// Is reports whether this error carries the given (category, code).
	Is(cat Category, code Code) bool
}

type codedError struct {
	cat     Category
	code    Code
	message string
	extra   string
}

// New builds an Error for (cat, code) using the category's registered
// canonical message. extra, if non-empty, is appended after a colon.
func New(cat Category, code Code, extra string) Error {
	return &codedError{
		cat:     cat,
		code:    code,
		message: Message(cat, code),
		extra:   extra,
	}
}

// Newf is New with a formatted extra message.
func Newf(cat Category, code Code, format string, args ...interface{}) Error {
	return New(cat, code, fmt.Sprintf(format, args...))
}

func (e *codedError) Category() Category { return e.cat }
func (e *codedError) Code() Code         { return e.code }

func (e *codedError) Is(cat Category, code Code) bool {
	return e.cat == cat && e.code == code
}

func (e *codedError) Error() string {
	if e.extra == "" {
		return e.message
	}
	return e.message + ": " + e.extra
}

// As reports whether err is an Error (or wraps one) matching (cat, code),
// using the standard library's errors.As under the hood.
func As(err error, cat Category, code Code) bool {
	var e Error
	if stderrors.As(err, &e) {
		return e.Is(cat, code)
	}
	return false
}

// Get returns err as an Error if it is (or wraps) one, else nil.
func Get(err error) Error {
	var e Error
	if stderrors.As(err, &e) {
		return e
	}
	return nil
}
