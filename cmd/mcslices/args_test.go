package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeArgsMovesFlagsFirst(t *testing.T) {
	args := normalizeArgs(newApp(), []string{"mcslices", "world", "-p", "pal.txt", "-m", "512"})
	assert.Equal(t, []string{"mcslices", "-p", "pal.txt", "-m", "512", "world"}, args)
}

func TestNormalizeArgsKeepsBoolFlagsAlone(t *testing.T) {
	args := normalizeArgs(newApp(), []string{"mcslices", "--cache", "world", "-c", "4", "other"})
	assert.Equal(t, []string{"mcslices", "--cache", "-c", "4", "world", "other"}, args)
}

func TestNormalizeArgsInlineValue(t *testing.T) {
	args := normalizeArgs(newApp(), []string{"mcslices", "world", "--palette=pal.txt"})
	assert.Equal(t, []string{"mcslices", "--palette=pal.txt", "world"}, args)
}

func TestNormalizeArgsLeavesSubcommands(t *testing.T) {
	in := []string{"mcslices", "build", "--config", "x.hcl"}
	assert.Equal(t, in, normalizeArgs(newApp(), in))
}
