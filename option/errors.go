/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package option

import "github.com/RolandTaverner/PraeTor-sub000/errors"

// Category is the stable name this package's errors are reported under.
const Category errors.Category = "OptionErrors"

const (
	NotRegistered errors.Code = iota + errors.MinOption + 1
	AlreadyRegistered
	ConstraintCheckFailed
	InvalidDefinition
	MissingDefaultValue
	MissingDomain
	NotFoundInStorage
	EmptyDomain
	AssigningListToSingleValue
	AssigningSingleToListValue
	MissingRequiredAttrInDefinition
	UnknownAttributeValueInDefinition
	MissingValue
	TypeCheckFailed
)

func init() {
	errors.RegisterCategory(Category, message)
}

func message(code errors.Code) string {
	switch code {
	case NotRegistered:
		return "Option is not registered."
	case AlreadyRegistered:
		return "Option already registered"
	case ConstraintCheckFailed:
		return "Constraints check failed."
	case InvalidDefinition:
		return "Invalid option definition."
	case MissingDefaultValue:
		return "Option has no default value."
	case MissingDomain:
		return "Option has no domain defined."
	case NotFoundInStorage:
		return "Option not found in storage."
	case EmptyDomain:
		return "Option domain is empty."
	case AssigningListToSingleValue:
		return "List value specified for single value option."
	case AssigningSingleToListValue:
		return "Single value specified for list value option."
	case MissingRequiredAttrInDefinition:
		return "Missing required attribute in option definition."
	case UnknownAttributeValueInDefinition:
		return "Unknown attribute value in option definition."
	case MissingValue:
		return "Option value is missing."
	case TypeCheckFailed:
		return "Option value failed type check."
	default:
		return ""
	}
}

// Err is a convenience constructor for this package's errors.
func Err(code errors.Code, extra string) errors.Error {
	return errors.New(Category, code, extra)
}
