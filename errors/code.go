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

package errors

import "sort"

// Code is a numeric error value, unique within its Category. Packages
// declare their own Code constants offset by the MinXXX constants in
// modules.go so that two categories never collide on the wire.
type Code uint16

// UnknownCode is the zero Code. No category defines a code at 0, so
// Message reports UnknownMessage for it.
const UnknownCode Code = 0

// UnknownMessage is the canonical message for UnknownCode.
const UnknownMessage = "unknown error"

// Category is the stable textual name a group of Codes is reported
// under, e.g. "ControllerErrors", "ProcessErrors". Unlike the upstream
// CodeError registry this ties every message lookup to a named group so
// JSON error bodies and the front-end's status-projection table (see
// webfront) can key off the category string directly.
type Category string

type messageFunc func(code Code) string

var registry = make(map[Category]messageFunc)

// RegisterCategory binds a Category name to the function that resolves
// its Codes to canonical messages. Mirrors the teacher's
// RegisterIdFctMessage, scoped per category instead of per global
// min-code range.
func RegisterCategory(cat Category, fct messageFunc) {
	registry[cat] = fct
}

// Message returns the canonical message for (cat, code), or
// UnknownMessage if the category was never registered or the function
// returns the empty string.
func Message(cat Category, code Code) string {
	if fct, ok := registry[cat]; ok {
		if m := fct(code); m != "" {
			return m
		}
	}
	return UnknownMessage
}

// Categories returns every registered Category name, sorted.
func Categories() []Category {
	res := make([]Category, 0, len(registry))
	for c := range registry {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}
