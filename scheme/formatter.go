/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package scheme

import (
	"fmt"
	"strings"

	"github.com/RolandTaverner/PraeTor-sub000/option"
)

// Substitutor resolves a closed vocabulary of %TAG% placeholders
// (PID, ROOTPATH, DATAROOTPATH, CONFIGFILE, LOGFILE, LOGFILENAME,
// LOGFILELOCATION) at render time. Supplied by the process supervisor
// per spec.md §9's "small capability object" design note — the
// formatter itself has no dependency on the process package.
type Substitutor interface {
	Substitute(tag string) (string, bool)
}

// ErrUnknownTag is returned by Render when a template references a
// substitution tag the Substitutor does not resolve. Callers (the
// process supervisor) translate this into their own
// substitutionNotFound error.
type ErrUnknownTag struct {
	Tag string
}

func (e ErrUnknownTag) Error() string {
	return fmt.Sprintf("unknown substitution tag %%%s%%", e.Tag)
}

var substitutionTags = []string{
	"PID", "ROOTPATH", "DATAROOTPATH", "CONFIGFILE", "LOGFILE", "LOGFILENAME", "LOGFILELOCATION",
}

// Render formats one option value according to d.Format: %NAME% is
// replaced by d.Name, %VALUE% by the value (joined with "," when the
// template is not Multiline, or once per element on separate lines when
// it is), and any %TAG% from substitutionTags is resolved via sub.
// Grounded on
// _examples/original_source/TorController/Options/DefaultFormatter.cpp.
func Render(d option.Desc, v option.Value, sub Substitutor) (string, error) {
	tmpl := strings.ReplaceAll(d.Format.Template, "%NAME%", d.Name)

	tmpl, err := substituteTags(tmpl, sub)
	if err != nil {
		return "", err
	}

	elems := v.Elements()

	if !d.Format.Multiline {
		joined := strings.Join(elems, ",")
		return strings.ReplaceAll(tmpl, "%VALUE%", joined), nil
	}

	lines := make([]string, len(elems))
	for i, e := range elems {
		lines[i] = strings.ReplaceAll(tmpl, "%VALUE%", e)
	}
	return strings.Join(lines, "\n"), nil
}

func substituteTags(tmpl string, sub Substitutor) (string, error) {
	for _, tag := range substitutionTags {
		placeholder := "%" + tag + "%"
		if !strings.Contains(tmpl, placeholder) {
			continue
		}
		val, ok := sub.Substitute(tag)
		if !ok {
			return "", ErrUnknownTag{Tag: tag}
		}
		tmpl = strings.ReplaceAll(tmpl, placeholder, val)
	}
	return tmpl, nil
}
