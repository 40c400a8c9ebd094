package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYears(t *testing.T) {
	years, err := parseYears("2023")
	require.NoError(t, err)
	assert.Equal(t, []int{2023}, years)

	years, err = parseYears("2021, 2022,2023")
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2022, 2023}, years)

	_, err = parseYears("")
	assert.Error(t, err)

	_, err = parseYears("2021,abc")
	assert.Error(t, err)
}
