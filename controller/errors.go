/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package controller

import "github.com/RolandTaverner/PraeTor-sub000/errors"

const Category errors.Category = "ControllerErrors"

const (
	ProcessNotFound errors.Code = iota + errors.MinController + 1
	StartProcessError
	PresetsNotFound
	ProcessIsRunning
	UnknownError
)

func init() {
	errors.RegisterCategory(Category, message)
}

func message(code errors.Code) string {
	switch code {
	case ProcessNotFound:
		return "Process not found."
	case StartProcessError:
		return "Error starting process."
	case PresetsNotFound:
		return "Preset group not found."
	case ProcessIsRunning:
		return "Process is running."
	case UnknownError:
		return "Unknown internal error."
	default:
		return ""
	}
}

func Err(code errors.Code, extra string) errors.Error {
	return errors.New(Category, code, extra)
}
