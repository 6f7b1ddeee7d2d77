package strategy

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operon-project/lropoll/internal/testdata"
	"github.com/operon-project/lropoll/pkg/models"
	"github.com/operon-project/lropoll/pkg/serializer"
	"github.com/operon-project/lropoll/pkg/transport"
)

const (
	testStatusURL   = "https://management.example.com/operations/op1"
	testResourceURL = "https://management.example.com/resources/vm1"
	testOperationID = "PUT /resources/vm1"
)

func newTestStrategy(t *testing.T) *OperationResourcePollStrategy {
	t.Helper()
	initiating := testdata.AcceptedResponse(map[string]string{
		AsyncOperationHeader: testStatusURL,
	})
	s := TryCreateOperationResourceStrategy(
		testOperationID,
		initiating,
		testResourceURL,
		serializer.NewJSONSerializer(),
	)
	require.NotNil(t, s)
	return s
}

func mustUpdate(t *testing.T, s PollStrategy, resp *transport.Response) *transport.Response {
	t.Helper()
	updated, err := s.UpdateFrom(context.Background(), resp)
	require.NoError(t, err)
	return updated
}

func TestTryCreateOperationResourceStrategy(t *testing.T) {
	t.Run("header present", func(t *testing.T) {
		s := newTestStrategy(t)
		assert.False(t, s.IsDone())
		assert.Equal(t, models.StatePolling, s.State())

		req := s.CreatePollRequest()
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, testStatusURL, req.URL)
		assert.Equal(t, testOperationID, req.OperationID)
	})

	t.Run("header absent", func(t *testing.T) {
		resp := testdata.AcceptedResponse(nil)
		s := TryCreateOperationResourceStrategy(
			testOperationID, resp, testResourceURL, serializer.NewJSONSerializer(),
		)
		assert.Nil(t, s)
	})

	t.Run("header empty", func(t *testing.T) {
		resp := testdata.AcceptedResponse(map[string]string{AsyncOperationHeader: ""})
		s := TryCreateOperationResourceStrategy(
			testOperationID, resp, testResourceURL, serializer.NewJSONSerializer(),
		)
		assert.Nil(t, s)
	})
}

func TestInProgressKeepsPolling(t *testing.T) {
	s := newTestStrategy(t)

	resp := testdata.FakeResponse(http.StatusOK, nil, testdata.StatusBody(models.ProvisioningStateInProgress))
	mustUpdate(t, s, resp)

	assert.False(t, s.PollingCompleted())
	assert.False(t, s.IsDone())
	assert.Equal(t, models.ProvisioningStateInProgress, s.ProvisioningState())
	assert.Equal(t, testStatusURL, s.CreatePollRequest().URL)
}

func TestSucceededThenFetchesResource(t *testing.T) {
	s := newTestStrategy(t)

	mustUpdate(t, s, testdata.FakeResponse(http.StatusOK, nil, testdata.StatusBody(models.ProvisioningStateSucceeded)))

	assert.True(t, s.PollingCompleted())
	assert.True(t, s.PollingSucceeded())
	assert.False(t, s.GotFinalResource())
	assert.False(t, s.IsDone(), "success is not done until the resource is fetched")
	assert.Equal(t, models.StateSucceededPendingFetch, s.State())

	// The next poll goes to the original resource, not the status URL.
	req := s.CreatePollRequest()
	assert.Equal(t, testResourceURL, req.URL)

	// Any response at all confirms the fetch; the body is not interpreted.
	resourceResp := testdata.FakeResponse(http.StatusOK, nil, "not even json")
	passed := mustUpdate(t, s, resourceResp)
	assert.Same(t, resourceResp, passed)

	assert.True(t, s.GotFinalResource())
	assert.True(t, s.IsDone())
	assert.Equal(t, models.StateSucceededFetched, s.State())
	assert.False(t, s.CreatePollRequest().HasTarget())
}

func TestFailedIsImmediatelyDone(t *testing.T) {
	s := newTestStrategy(t)

	mustUpdate(t, s, testdata.FakeResponse(http.StatusOK, nil, testdata.StatusBody(models.ProvisioningStateFailed)))

	assert.True(t, s.PollingCompleted())
	assert.False(t, s.PollingSucceeded())
	assert.True(t, s.IsDone())
	assert.Equal(t, models.StateFailed, s.State())
	assert.False(t, s.CreatePollRequest().HasTarget())

	// Further updates pass the response through without changing state.
	late := testdata.FakeResponse(http.StatusOK, nil, testdata.StatusBody(models.ProvisioningStateInProgress))
	passed := mustUpdate(t, s, late)
	assert.Same(t, late, passed)
	assert.Equal(t, models.StateFailed, s.State())
}

func TestProvisioningStateIsCaseInsensitive(t *testing.T) {
	for _, state := range []string{"succeeded", "SUCCEEDED", "sUcCeEdEd"} {
		s := newTestStrategy(t)
		mustUpdate(t, s, testdata.FakeResponse(http.StatusOK, nil, testdata.StatusBody(state)))
		assert.True(t, s.PollingSucceeded(), "state %q should count as succeeded", state)
	}

	s := newTestStrategy(t)
	mustUpdate(t, s, testdata.FakeResponse(http.StatusOK, nil, testdata.StatusBody("inprogress")))
	assert.False(t, s.PollingCompleted())
}

func TestMalformedBodyFailsRoundWithoutStateChange(t *testing.T) {
	s := newTestStrategy(t)

	badResp := func() *transport.Response {
		return testdata.FakeResponse(http.StatusOK, nil, `{"properties":{`)
	}

	_, err := s.UpdateFrom(context.Background(), badResp())
	require.Error(t, err)
	assert.True(t, serializer.IsDeserializationError(err))
	assert.False(t, s.PollingCompleted())
	assert.Equal(t, "", s.ProvisioningState())
	assert.Equal(t, testStatusURL, s.CreatePollRequest().URL)

	// The async form produces the identical outcome.
	result := <-s.UpdateFromAsync(context.Background(), badResp())
	require.Error(t, result.Err)
	assert.True(t, serializer.IsDeserializationError(result.Err))
	assert.False(t, s.PollingCompleted())

	// The strategy still works after the failed rounds.
	mustUpdate(t, s, testdata.FakeResponse(http.StatusOK, nil, testdata.StatusBody(models.ProvisioningStateSucceeded)))
	assert.True(t, s.PollingSucceeded())
}

func TestPayloadWithoutResourceOrPropertiesStaysPolling(t *testing.T) {
	for _, body := range []string{"", "   ", "null", "{}", `{"id":"op1"}`} {
		s := newTestStrategy(t)
		mustUpdate(t, s, testdata.FakeResponse(http.StatusOK, nil, body))
		assert.False(t, s.PollingCompleted(), "body %q should leave the operation polling", body)
		assert.Equal(t, testStatusURL, s.CreatePollRequest().URL)
	}
}

func TestPropertiesWithoutProvisioningStateIsTerminal(t *testing.T) {
	// A properties block with no provisioning state does not match
	// InProgress, so the operation counts as terminal and not succeeded.
	s := newTestStrategy(t)
	mustUpdate(t, s, testdata.FakeResponse(http.StatusOK, nil, `{"properties":{}}`))
	assert.True(t, s.PollingCompleted())
	assert.False(t, s.PollingSucceeded())
	assert.True(t, s.IsDone())
}

func TestDelayLifecycle(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("poll.default_delay_seconds", 7)

	s := newTestStrategy(t)
	assert.Equal(t, 7*time.Second, s.Delay(), "delay starts at the configured default")

	resp := testdata.FakeResponse(http.StatusOK, map[string]string{
		RetryAfterHeader: "3",
	}, testdata.StatusBody(models.ProvisioningStateInProgress))
	mustUpdate(t, s, resp)
	assert.Equal(t, 3*time.Second, s.Delay(), "Retry-After overrides the delay")

	noHeader := testdata.FakeResponse(http.StatusOK, nil, testdata.StatusBody(models.ProvisioningStateInProgress))
	mustUpdate(t, s, noHeader)
	assert.Equal(t, 3*time.Second, s.Delay(), "absent Retry-After leaves the delay alone")

	unparseable := testdata.FakeResponse(http.StatusOK, map[string]string{
		RetryAfterHeader: "soon",
	}, testdata.StatusBody(models.ProvisioningStateInProgress))
	mustUpdate(t, s, unparseable)
	assert.Equal(t, 3*time.Second, s.Delay())

	mustUpdate(t, s, testdata.FakeResponse(http.StatusOK, nil, testdata.StatusBody(models.ProvisioningStateSucceeded)))
	assert.Equal(t, time.Duration(0), s.Delay(), "delay clears once terminal")
}

func TestPollingCompletedIsMonotonic(t *testing.T) {
	s := newTestStrategy(t)

	updates := []string{
		testdata.StatusBody(models.ProvisioningStateInProgress),
		testdata.StatusBody(models.ProvisioningStateSucceeded),
		testdata.StatusBody(models.ProvisioningStateInProgress),
		"{}",
	}

	var completedSeen bool
	for _, body := range updates {
		mustUpdate(t, s, testdata.FakeResponse(http.StatusOK, nil, body))
		if completedSeen {
			assert.True(t, s.PollingCompleted(), "pollingCompleted must never revert")
		}
		if s.PollingCompleted() {
			completedSeen = true
		}
		// isDone must agree with the flag view at every step.
		expectedDone := s.PollingCompleted() && (!s.PollingSucceeded() || s.GotFinalResource())
		assert.Equal(t, expectedDone, s.IsDone())
	}
	assert.True(t, completedSeen)
}
