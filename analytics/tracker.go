package analytics

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"dev-overflow/database"
	"dev-overflow/helpers"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Tracker writes view and search events to the analytics cache (influxDB).
// The cache holds a limited period (bucket TTL); long-term counts are
// replicated into MongoDB by a scheduled job.
type Tracker struct {
	influxClient influxdb2.Client
	VisitorAPI   database.InfluxAPI
	SearchAPI    database.InfluxAPI
	collections  map[string]*mongo.Collection
	GetUserName  func(ID string) (string, error)
}

// Visit is one recorded view of a question
type Visit struct {
	VisitTS    time.Time `json:"visitTS"`
	QuestionID string    `json:"questionID"`
	UserID     string    `json:"userID"`
	UserName   string    `json:"userName"`
}

// SetConnections initializes the instance.
// The write/query/delete handles are bound here, once per measurement;
// without an analytics store they stay nil - the save and query methods
// return before reaching them.
func (t *Tracker) SetConnections(influxClient *influxdb2.Client, mongoCollections map[string]*mongo.Collection) {
	t.influxClient = *influxClient
	t.collections = mongoCollections

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return
	}

	org := os.Getenv("ANALYTICS_ORG")

	t.VisitorAPI.WriteAPI = t.influxClient.WriteAPIBlocking(org, os.Getenv("ANALYTICS_VISITORS_BUCKET"))
	t.VisitorAPI.QueryAPI = t.influxClient.QueryAPI(org)
	t.VisitorAPI.DeleteAPI = t.influxClient.DeleteAPI()

	t.SearchAPI.WriteAPI = t.influxClient.WriteAPIBlocking(org, os.Getenv("ANALYTICS_SEARCHES_BUCKET"))
	t.SearchAPI.QueryAPI = t.influxClient.QueryAPI(org)
	t.SearchAPI.DeleteAPI = t.influxClient.DeleteAPI()
}

// SaveVisitor stores a question view in the analytics cache.
// userID may be empty for anonymous visitors.
func (t *Tracker) SaveVisitor(questionID string, userID string) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return
	}

	// include object type in the key name so it can be "unwrapped"
	// in aggregation queries

	// the risk of high series cardinality is accepted, since questions
	// are what we're interested in
	// https://docs.influxdata.com/influxdb/v2.0/write-data/best-practices/resolve-high-cardinality/

	p := influxdb2.NewPoint(
		"visit",
		map[string]string{"profileId": "question_" + questionID},
		map[string]interface{}{"userId": userID},
		time.Now())

	// ToDo: log Error
	t.VisitorAPI.WriteAPI.WritePoint(context.Background(), p)
}

// SaveSearch stores a search event, tagged with every hit so the result
// quality of a term can be assessed later
func (t *Tracker) SaveSearch(searchTerm string, filter string, questionIDs []string) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return
	}

	// do not log any empty search
	if searchTerm == "" {
		return
	}

	ts := time.Now()

	for _, id := range questionIDs {
		fields := map[string]interface{}{
			"filter": filter,
			"term":   searchTerm}

		p := influxdb2.NewPoint(
			"search", // measurement
			map[string]string{"questionId": id}, // tag
			fields,
			ts)

		// ToDo: log Error
		t.SearchAPI.WriteAPI.WritePoint(context.Background(), p)
	}

	// flush called implicitly
}

// GetVisits counts the number of views of a question
// the value is "live" - meaning it's read from the analytics cache (influxDB)
// which is set to a maximum period (TTL) of 30 days
func (t *Tracker) GetVisits(questionID string, startDT time.Time) (int64, error) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return -1, nil
	}

	flux := `from(bucket: "%s")
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == "visit" and r["profileId"] == "%s")
		|> count()
		|> yield(name: "count")`

	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_VISITORS_BUCKET"),
		startDT.Format(time.RFC3339),
		"question_"+questionID)

	result, err := t.VisitorAPI.QueryAPI.Query(context.Background(), flux)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	// just 1 record
	var res interface{}
	for result.Next() {
		res = result.Record().Value()
	}

	var cnt int64 = 0
	if res != nil {
		cnt = res.(int64)
	}

	return cnt, nil
}

// ListVisitors returns the 10 latest visitors of a question
// (only the last visit per user)
func (t *Tracker) ListVisitors(questionID string, startDT time.Time) ([]Visit, error) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return nil, nil
	}

	flux := `import "strings"
		from(bucket: "%s")
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == "visit" and strings.containsStr(substr: "%s", v: r.profileId))
		|> group(columns: ["_value"], mode:"by")
		|> max(column: "_time")
		|> sort(columns: ["_time"], desc: true)
		|> limit(n:10, offset: 0)`

	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_VISITORS_BUCKET"),
		startDT.Format(time.RFC3339), // 2021-04-01T00:00:00Z
		"question_"+questionID)

	result, err := t.VisitorAPI.QueryAPI.Query(context.Background(), flux)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var visit Visit
	var visits []Visit
	for result.Next() {
		visit.VisitTS = result.Record().Time()
		visit.QuestionID = questionID
		if result.Record().Value() == nil {
			visit.UserID = ""
			visit.UserName = ""
		} else {
			visit.UserID = result.Record().Value().(string)
			visit.UserName, _ = t.GetUserName(visit.UserID)
		}

		visits = append(visits, visit)
	}

	// the flux query is sorted, the slice however comes back unordered
	// https://he-the-great.livejournal.com/49072.html
	sort.Slice(visits, func(i, j int) bool {
		return visits[j].VisitTS.Before(visits[i].VisitTS)
	})

	return visits, nil
}

// Replicate moves aged visit counts from the cache (influxDB) into the
// database (Mongo); run every hour for everything older than one month
func (t *Tracker) Replicate() {

	ctx := context.Background()
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.Now().UTC().Location()) // just start somewhere as the minimum date
	stop := time.Now().AddDate(0, -1, 0)                                    // move everything older than one month

	// 1. get counts from influxDB
	flux := `from(bucket: "%s")
	|> range(start: %s, stop: %s) // use pre-calculated stop because delete-api needs time
	|> filter(fn: (r) => r["_measurement"] == "visit")
	|> count()
	|> yield(name: "count")`

	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_VISITORS_BUCKET"),
		start.Format(time.RFC3339),
		stop.Format(time.RFC3339))

	result, err := t.VisitorAPI.QueryAPI.Query(ctx, flux)
	if err != nil {
		// ToDo: log Error
		fmt.Println(helpers.WrapError(err, helpers.FuncName()))
		return
	}

	// 2. save counts to MongoDB (bulk)
	// create a write model for each collection
	opModels := make(map[string][]mongo.WriteModel)

	var strs []string // used to "extract" object type from key
	for result.Next() {
		// create a document and a write model for each record
		strs = strings.Split(result.Record().ValueByKey("profileId").(string), "_")

		operation := bson.D{
			{Key: "$inc", Value: bson.D{
				{Key: "visits", Value: result.Record().Value()}, // value of the projection function (count)
			}},
		}

		opModel := mongo.NewUpdateOneModel()
		opModel.SetFilter(bson.D{{Key: "_id", Value: helpers.ObjectID(strs[1])}}).SetUpdate(operation)

		switch strs[0] {
		case "question":
			opModels[database.CollectionQuestions] = append(opModels[database.CollectionQuestions], opModel)
		default:
			// ToDo: log
			fmt.Println("ERROR: repl not correctly implemented")
		}
	}

	// len returns int, mongoDB's matchCount int64
	var i int = 0
	for _, v := range opModels {
		i += len(v)
	}

	// abort if no data to process
	if i == 0 {
		fmt.Printf("%v: %v question's visit(s) replicated.\n", time.Now().Format(time.RFC3339), 0)
		return
	}

	opts := options.BulkWrite().SetOrdered(false)

	var cnt int64 = 0 // total replicated visits

	// process each collection's write models (= update operations)
	for k, v := range opModels {
		if v != nil {
			res, err := t.collections[k].BulkWrite(ctx, v, opts)
			if err != nil {
				// ToDo: log Error
				fmt.Println(helpers.WrapError(err, helpers.FuncName()))
				continue
			}
			cnt += res.MatchedCount
		}
	}

	// 3. drop the replicated range from the cache, otherwise the next run
	// counts it again
	err = t.VisitorAPI.DeleteAPI.DeleteWithName(ctx, os.Getenv("ANALYTICS_ORG"), os.Getenv("ANALYTICS_VISITORS_BUCKET"), start, stop, "")
	if err != nil {
		// ToDo: log Error
		fmt.Println(helpers.WrapError(err, helpers.FuncName()))
	}

	fmt.Printf("%v: %v question's visit(s) replicated.\n", time.Now().Format(time.RFC3339), cnt)
}
