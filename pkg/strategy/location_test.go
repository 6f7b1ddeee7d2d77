package strategy

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operon-project/lropoll/internal/testdata"
)

const testLocationURL = "https://management.example.com/operationresults/op1"

func TestTryCreateLocationStrategy(t *testing.T) {
	s := TryCreateLocationStrategy(testOperationID, testdata.AcceptedResponse(map[string]string{
		LocationHeader: testLocationURL,
	}))
	require.NotNil(t, s)
	assert.False(t, s.IsDone())
	assert.Equal(t, testLocationURL, s.CreatePollRequest().URL)

	assert.Nil(t, TryCreateLocationStrategy(testOperationID, testdata.AcceptedResponse(nil)))
}

func TestLocationStrategyPollsUntilNon202(t *testing.T) {
	s := TryCreateLocationStrategy(testOperationID, testdata.AcceptedResponse(map[string]string{
		LocationHeader: testLocationURL,
	}))
	require.NotNil(t, s)

	// 202 keeps polling and refreshes the poll URL from its own header.
	redirected := testLocationURL + "?page=2"
	mustUpdate(t, s, testdata.FakeResponse(http.StatusAccepted, map[string]string{
		LocationHeader:   redirected,
		RetryAfterHeader: "2",
	}, ""))
	assert.False(t, s.IsDone())
	assert.Equal(t, redirected, s.CreatePollRequest().URL)
	assert.Equal(t, 2*time.Second, s.Delay())

	// 202 without a Location header keeps the previous URL.
	mustUpdate(t, s, testdata.FakeResponse(http.StatusAccepted, nil, ""))
	assert.Equal(t, redirected, s.CreatePollRequest().URL)

	// The first non-202 ends polling.
	final := testdata.FakeResponse(http.StatusOK, nil, `{"done":true}`)
	passed := mustUpdate(t, s, final)
	assert.Same(t, final, passed)
	assert.True(t, s.IsDone())
	assert.Equal(t, time.Duration(0), s.Delay())
	assert.False(t, s.CreatePollRequest().HasTarget())
}
