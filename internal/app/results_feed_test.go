package app_test

import (
	"testing"

	"company-quiz-service/internal/app"
	"company-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultsFeedRoutesByCompany(t *testing.T) {
	feed := app.NewResultsFeed()
	acme, cancelAcme := feed.Subscribe(acmeID)
	globex, cancelGlobex := feed.Subscribe(globexID)
	defer cancelGlobex()

	feed.Publish(domain.ParticipationResult{ParticipationID: 1, CompanyID: acmeID})

	got := <-acme
	assert.Equal(t, int64(1), got.ParticipationID)
	select {
	case r := <-globex:
		t.Fatalf("unexpected result for other company: %+v", r)
	default:
	}

	cancelAcme()
	_, ok := <-acme
	assert.False(t, ok, "channel should be closed after cancel")
	assert.Equal(t, 0, feed.Subscribers(acmeID))
	cancelAcme()
}

func TestResultsFeedDropsStaleForSlowSubscriber(t *testing.T) {
	feed := app.NewResultsFeed()
	ch, cancel := feed.Subscribe(acmeID)
	defer cancel()

	const published = 20
	for i := 1; i <= published; i++ {
		feed.Publish(domain.ParticipationResult{ParticipationID: int64(i), CompanyID: acmeID})
	}

	var last int64
	n := 0
	for len(ch) > 0 {
		last = (<-ch).ParticipationID
		n++
	}
	require.Less(t, n, published)
	assert.Equal(t, int64(published), last)
}
