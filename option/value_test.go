/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 */

package option_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RolandTaverner/PraeTor-sub000/option"
)

func TestValue_Single(t *testing.T) {
	v := option.Single("a")
	assert.True(t, v.IsSingle())
	assert.False(t, v.IsList())
	s, ok := v.AsSingle()
	assert.True(t, ok)
	assert.Equal(t, "a", s)
}

func TestValue_List(t *testing.T) {
	v := option.List("a", "b")
	assert.True(t, v.IsList())
	l, ok := v.AsList()
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, l)
}

func TestValue_Empty(t *testing.T) {
	var v option.Value
	assert.True(t, v.IsEmpty())
	assert.False(t, v.IsSingle())
	assert.False(t, v.IsList())
}

func TestValue_Elements(t *testing.T) {
	assert.Equal(t, []string{"a"}, option.Single("a").Elements())
	assert.Equal(t, []string{"a", "b"}, option.List("a", "b").Elements())
}
