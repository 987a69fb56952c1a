/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

// Package webfront implements the URL-template router, admission
// gate, and JSON action dispatch of spec.md §4.C10. The engine itself
// is github.com/gin-gonic/gin, matching the routing library
// _examples/nabbar-golib/router exercises (see its router_test.go);
// routes are declared with the spec's own "$param" placeholder
// vocabulary and translated to gin's ":param" syntax at registration.
package webfront

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// translatePath rewrites every "$name" path segment into gin's
// ":name" parameter syntax, preserving literal segments unchanged
// (spec.md §4.C10's path-template tree).
func translatePath(tmpl string) string {
	segments := strings.Split(tmpl, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, "$") {
			segments[i] = ":" + seg[1:]
		}
	}
	return strings.Join(segments, "/")
}

// route is one entry of the fixed route table (spec.md §6 "HTTP
// surface").
type route struct {
	method string
	path   string
	action string
	handle gin.HandlerFunc
}

func newEngine() *gin.Engine {
	e := gin.New()
	e.Use(gin.Recovery())
	return e
}
