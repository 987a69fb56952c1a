/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package webfront

import (
	"github.com/gin-gonic/gin"

	"github.com/RolandTaverner/PraeTor-sub000/controller"
	liberrors "github.com/RolandTaverner/PraeTor-sub000/errors"
)

// errorBody is the fixed JSON shape for a failed action (spec.md §6
// "Error bodies carry error, category, value").
type errorBody struct {
	Error    string `json:"error"`
	Category string `json:"category"`
	Value    int    `json:"value"`
}

func (s *Server) writeError(c *gin.Context, action string, err error) {
	e := liberrors.Get(err)
	if e == nil {
		e = controller.Err(controller.UnknownError, err.Error())
	}
	status := s.statusTable.Lookup(action, e.Category(), e.Code())
	c.JSON(status, errorBody{Error: e.Error(), Category: string(e.Category()), Value: int(e.Code())})
}

func writeJSON(c *gin.Context, body interface{}) {
	c.JSON(200, body)
}
