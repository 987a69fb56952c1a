/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package webfront

import (
	"net/http"

	"github.com/RolandTaverner/PraeTor-sub000/controller"
	"github.com/RolandTaverner/PraeTor-sub000/errors"
	"github.com/RolandTaverner/PraeTor-sub000/option"
	"github.com/RolandTaverner/PraeTor-sub000/process"
)

// statusAny matches any code within a category in the projection
// table (spec.md §4.C10 lookup step 2).
const statusAny errors.Code = 0

// StatusTable is the action -> HTTP status projection table, fixed at
// startup (spec.md §4.C10). Each action name maps to a per-category
// sub-map from code to HTTP status; a statusAny entry matches any
// code in that category not otherwise listed.
type StatusTable map[string]map[errors.Category]map[errors.Code]int

// NewStatusTable builds the default projection table shared by every
// route (spec.md §8 scenario 2: constraintCheckFailed -> 409; scenario
// 3: processNotFound -> 404; scenario 4: processIsRunning -> 409).
func NewStatusTable() StatusTable {
	return StatusTable{
		"*": {
			controller.Category: {
				controller.ProcessNotFound:  http.StatusNotFound,
				controller.PresetsNotFound:  http.StatusNotFound,
				controller.ProcessIsRunning: http.StatusConflict,
				statusAny:                   http.StatusInternalServerError,
			},
			process.Category: {
				process.NoSuchStorage:                  http.StatusNotFound,
				process.NoSuchOption:                   http.StatusNotFound,
				process.AlreadyRunning:                 http.StatusConflict,
				process.ProcessNotRunning:              http.StatusConflict,
				process.CantEditConfigOfRunningProcess: http.StatusConflict,
				process.SystemOptionEditForbidden:      http.StatusForbidden,
				process.MissingRequiredOption:          http.StatusBadRequest,
				statusAny:                              http.StatusInternalServerError,
			},
			option.Category: {
				option.NotRegistered:             http.StatusNotFound,
				option.InvalidDefinition:         http.StatusBadRequest,
				option.AssigningSingleToListValue: http.StatusBadRequest,
				option.AssigningListToSingleValue: http.StatusBadRequest,
				option.TypeCheckFailed:            http.StatusBadRequest,
				statusAny:                         http.StatusConflict,
			},
			Category: {
				RouteNotFound:    http.StatusNotFound,
				MethodNotAllowed: http.StatusMethodNotAllowed,
				statusAny:        http.StatusServiceUnavailable,
			},
		},
	}
}

// Lookup resolves (action, category, code) to an HTTP status per
// spec.md §4.C10's four-step order: exact (category, code), then
// (category, any), then the method-not-allowed shape, then 500.
func (t StatusTable) Lookup(action string, cat errors.Category, code errors.Code) int {
	sub, ok := t[action]
	if !ok {
		sub = t["*"]
	}
	if catMap, ok := sub[cat]; ok {
		if status, ok := catMap[code]; ok {
			return status
		}
		if status, ok := catMap[statusAny]; ok {
			return status
		}
	}
	if cat == Category && code == MethodNotAllowed {
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}
