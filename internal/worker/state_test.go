package worker_test

import (
	"testing"

	"github.com/rohmanhakim/web-scrapper/internal/worker"
	"github.com/stretchr/testify/require"
)

func TestStateOrdering(t *testing.T) {
	require.LessOrEqual(t, worker.StateOf("created"), worker.StateOf("getting_url"))
	require.LessOrEqual(t, worker.StateOf("getting_url"), worker.StateOf("done"))
	require.Less(t, worker.Created, worker.GettingURL)
	require.Less(t, worker.GettingURL, worker.DownloadingSite)
	require.Less(t, worker.DownloadingSite, worker.PushingURLs)
	require.Less(t, worker.PushingURLs, worker.FeedingData)
	require.Less(t, worker.FeedingData, worker.Done)
}

func TestStateNamesRoundTrip(t *testing.T) {
	states := []worker.State{
		worker.Created,
		worker.GettingURL,
		worker.DownloadingSite,
		worker.PushingURLs,
		worker.FeedingData,
		worker.Done,
	}
	for _, s := range states {
		require.Equal(t, s, worker.StateOf(s.String()))
	}
}

func TestStateOfUnknownNameIsLowest(t *testing.T) {
	require.Equal(t, worker.Created, worker.StateOf("no_such_state"))
}
