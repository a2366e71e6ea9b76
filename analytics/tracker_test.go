package analytics

import (
	"os"
	"testing"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/stretchr/testify/assert"
)

// the write/query/delete handles must be bound as soon as the connections
// are set, otherwise every tracked view hits a nil interface
func TestSetConnectionsBindsHandles(t *testing.T) {

	os.Setenv("USE_ANALYTICS", "YES")
	os.Setenv("ANALYTICS_ORG", "dev-overflow")
	os.Setenv("ANALYTICS_VISITORS_BUCKET", "visitors")
	os.Setenv("ANALYTICS_SEARCHES_BUCKET", "searches")
	defer os.Unsetenv("USE_ANALYTICS")

	// no I/O happens before the first write/query
	client := influxdb2.NewClient("http://localhost:9999", "")
	defer client.Close()

	tracker := new(Tracker)
	tracker.SetConnections(&client, nil)

	assert.NotNil(t, tracker.VisitorAPI.WriteAPI)
	assert.NotNil(t, tracker.VisitorAPI.QueryAPI)
	assert.NotNil(t, tracker.VisitorAPI.DeleteAPI)
	assert.NotNil(t, tracker.SearchAPI.WriteAPI)
	assert.NotNil(t, tracker.SearchAPI.QueryAPI)
	assert.NotNil(t, tracker.SearchAPI.DeleteAPI)
}

// with analytics off the tracker must stay inert (no handles, no writes)
func TestTrackerAnalyticsOff(t *testing.T) {

	os.Setenv("USE_ANALYTICS", "NO")
	defer os.Unsetenv("USE_ANALYTICS")

	client := influxdb2.NewClient("http://localhost:9999", "")
	defer client.Close()

	tracker := new(Tracker)
	tracker.SetConnections(&client, nil)

	assert.Nil(t, tracker.VisitorAPI.WriteAPI)

	// the save methods return before touching the handles
	tracker.SaveVisitor("60b0e3c1f0a1b2c3d4e5f607", "60b0e3c1f0a1b2c3d4e5f608")
	tracker.SaveSearch("flexbox", "newest", []string{"60b0e3c1f0a1b2c3d4e5f607"})

	visits, err := tracker.GetVisits("60b0e3c1f0a1b2c3d4e5f607", time.Time{})
	assert.NoError(t, err)
	assert.Equal(t, int64(-1), visits)
}
