/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package process

import "github.com/RolandTaverner/PraeTor-sub000/errors"

const Category errors.Category = "ProcessErrors"

const (
	AlreadyRunning errors.Code = iota + errors.MinProcess + 1
	NoSuchStorage
	NoSuchOption
	MissingRequiredOption
	SubstitutionNotFound
	ConfigFileWriteError
	ProcessNotRunning
	SystemOptionEditForbidden
	CantEditConfigOfRunningProcess
)

func init() {
	errors.RegisterCategory(Category, message)
}

func message(code errors.Code) string {
	switch code {
	case AlreadyRunning:
		return "Process is already running."
	case NoSuchStorage:
		return "Process has no specified storage."
	case NoSuchOption:
		return "Process storage has no specified option."
	case MissingRequiredOption:
		return "Option marked as required but no value provided."
	case SubstitutionNotFound:
		return "Unknown substitution placeholder."
	case ConfigFileWriteError:
		return "Can't write config file."
	case ProcessNotRunning:
		return "Process is not running."
	case SystemOptionEditForbidden:
		return "System option cannot be edited."
	case CantEditConfigOfRunningProcess:
		return "Can't edit configuration of a running process."
	default:
		return ""
	}
}

func Err(code errors.Code, extra string) errors.Error {
	return errors.New(Category, code, extra)
}
