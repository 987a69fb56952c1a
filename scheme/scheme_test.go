/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package scheme_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RolandTaverner/PraeTor-sub000/option"
	"github.com/RolandTaverner/PraeTor-sub000/scheme"
)

type rangeConstraint struct{ min, max int }

func (r rangeConstraint) Name() string { return "range" }
func (r rangeConstraint) Valid(v option.Value) bool {
	s, ok := v.AsSingle()
	if !ok {
		return false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
		n = n*10 + int(c-'0')
	}
	return n >= r.min && n <= r.max
}

func TestRegister_IdempotentAtIdentity(t *testing.T) {
	s := scheme.New()

	assert.NoError(t, s.Register(option.Desc{Name: "port"}))
	assert.Error(t, s.Register(option.Desc{Name: "port"}))
}

func TestCheckOption_ListShapeMismatch(t *testing.T) {
	s := scheme.New()
	assert.NoError(t, s.Register(option.Desc{Name: "single", List: false}))
	assert.NoError(t, s.Register(option.Desc{Name: "list", List: true}))

	listVal := option.List("a", "b")
	err := s.CheckOption(option.Option{Name: "single", Value: &listVal})
	assert.Error(t, err)

	singleVal := option.Single("a")
	err = s.CheckOption(option.Option{Name: "list", Value: &singleVal})
	assert.Error(t, err)
}

func TestCheckOption_ConstraintFailure(t *testing.T) {
	s := scheme.New()
	assert.NoError(t, s.Register(option.Desc{
		Name:        "port",
		Constraints: []option.Constraint{rangeConstraint{1, 65535}},
	}))

	v := option.Single("65536")
	err := s.CheckOption(option.Option{Name: "port", Value: &v})
	assert.Error(t, err)

	v = option.Single("8080")
	err = s.CheckOption(option.Option{Name: "port", Value: &v})
	assert.NoError(t, err)
}

func TestStorage_EffectiveFallsBackToDefault(t *testing.T) {
	s := scheme.New()
	def := option.Single("8080")
	assert.NoError(t, s.Register(option.Desc{Name: "port", Default: &def}))

	st := scheme.NewStorage(s)
	v, ok, err := st.Effective("port")
	assert.NoError(t, err)
	assert.True(t, ok)
	val, _ := v.AsSingle()
	assert.Equal(t, "8080", val)
}

func TestStorage_RemoveRevertsToDefault(t *testing.T) {
	s := scheme.New()
	def := option.Single("8080")
	assert.NoError(t, s.Register(option.Desc{Name: "port", Default: &def}))

	st := scheme.NewStorage(s)
	assert.NoError(t, st.Set("port", option.Single("9090")))
	v, _, _ := st.Effective("port")
	val, _ := v.AsSingle()
	assert.Equal(t, "9090", val)

	assert.NoError(t, st.Remove("port"))
	v, _, _ = st.Effective("port")
	val, _ = v.AsSingle()
	assert.Equal(t, "8080", val)
}

func TestStorage_RequiredMissing(t *testing.T) {
	s := scheme.New()
	assert.NoError(t, s.Register(option.Desc{Name: "host", Required: true}))
	st := scheme.NewStorage(s)
	assert.Equal(t, []string{"host"}, st.RequiredMissing())

	assert.NoError(t, st.Set("host", option.Single("localhost")))
	assert.Empty(t, st.RequiredMissing())
}

type fakeSub struct{ values map[string]string }

func (f fakeSub) Substitute(tag string) (string, bool) {
	v, ok := f.values[tag]
	return v, ok
}

func TestRender_SingleValue(t *testing.T) {
	d := option.Desc{Name: "pidfile", Format: option.Format{Template: "--pidfile=%VALUE%"}}
	out, err := scheme.Render(d, option.Single("/tmp/x.pid"), fakeSub{})
	assert.NoError(t, err)
	assert.Equal(t, "--pidfile=/tmp/x.pid", out)
}

func TestRender_ListNotMultiline_Joined(t *testing.T) {
	d := option.Desc{Name: "hosts", Format: option.Format{Template: "%NAME%=%VALUE%"}}
	out, err := scheme.Render(d, option.List("a", "b"), fakeSub{})
	assert.NoError(t, err)
	assert.Equal(t, "hosts=a,b", out)
}

func TestRender_ListMultiline_OnePerLine(t *testing.T) {
	d := option.Desc{Name: "hosts", Format: option.Format{Template: "host %VALUE%", Multiline: true}}
	out, err := scheme.Render(d, option.List("a", "b"), fakeSub{})
	assert.NoError(t, err)
	assert.Equal(t, "host a\nhost b", out)
}

func TestRender_SubstitutionTag(t *testing.T) {
	d := option.Desc{Name: "log", Format: option.Format{Template: "--log=%LOGFILE%"}}
	out, err := scheme.Render(d, option.Single("ignored"), fakeSub{values: map[string]string{"LOGFILE": "/var/log/x.log"}})
	assert.NoError(t, err)
	assert.Equal(t, "--log=/var/log/x.log", out)
}

func TestRender_UnknownTag(t *testing.T) {
	d := option.Desc{Name: "log", Format: option.Format{Template: "--log=%LOGFILE%"}}
	_, err := scheme.Render(d, option.Single("x"), fakeSub{})
	assert.Error(t, err)
	var tagErr scheme.ErrUnknownTag
	assert.ErrorAs(t, err, &tagErr)
	assert.Equal(t, "LOGFILE", tagErr.Tag)
}
