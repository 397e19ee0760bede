package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListCriteria(t *testing.T) {
	t.Run("month out of range is rejected", func(t *testing.T) {
		_, err := parseListCriteria(ListEventsQuery{Month: 13})
		require.Error(t, err)

		_, err = parseListCriteria(ListEventsQuery{Month: -1})
		require.Error(t, err)
	})

	t.Run("month zero means no filter", func(t *testing.T) {
		criteria, err := parseListCriteria(ListEventsQuery{})
		require.NoError(t, err)
		assert.Nil(t, criteria.FilterMonth)
		assert.Nil(t, criteria.FilterDate)
	})

	t.Run("valid month", func(t *testing.T) {
		criteria, err := parseListCriteria(ListEventsQuery{Month: 8})
		require.NoError(t, err)
		require.NotNil(t, criteria.FilterMonth)
		assert.Equal(t, time.August, *criteria.FilterMonth)
	})

	t.Run("date wins over month", func(t *testing.T) {
		criteria, err := parseListCriteria(ListEventsQuery{Date: "2026-08-25", Month: 9})
		require.NoError(t, err)
		require.NotNil(t, criteria.FilterDate)
		assert.Nil(t, criteria.FilterMonth)
		assert.Equal(t, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), *criteria.FilterDate)
	})

	t.Run("malformed date", func(t *testing.T) {
		_, err := parseListCriteria(ListEventsQuery{Date: "25/08/2026"})
		require.Error(t, err)
	})

	t.Run("sort and query pass through", func(t *testing.T) {
		criteria, err := parseListCriteria(ListEventsQuery{Query: "תל אביב", Sort: "desc"})
		require.NoError(t, err)
		assert.True(t, criteria.SortDescending)
		assert.Equal(t, "תל אביב", criteria.Query)
	})
}
