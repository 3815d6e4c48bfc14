package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
)

const Day = time.Hour * 24

func NewPeriod(span time.Duration) *Period {
	return &Period{
		span:   span,
		Period: 60,
	}
}

type Period struct {
	span   time.Duration
	Period int64
}

func (period *Period) Days() float64 {
	return float64(period.span) / float64(Day)
}

// dayStart and dayEnd bound the one day window that ends days-1 days before
// now. The start is pulled back a second so consecutive windows overlap.
func dayStart(now time.Time, days float64) time.Time {
	return now.Add(time.Duration(float64(Day)*-days) - time.Second)
}

func dayEnd(now time.Time, days float64) time.Time {
	days = math.Max(0, days-1)
	return now.Add(time.Duration(float64(Day) * -days))
}

// metricQuery selects one CloudWatch statistic.
type metricQuery struct {
	Namespace  string
	Metric     string
	Statistic  string
	Dimensions map[string]string
}

func (q metricQuery) dimensions() []*cloudwatch.Dimension {
	names := make([]string, 0, len(q.Dimensions))
	for name := range q.Dimensions {
		names = append(names, name)
	}
	sort.Strings(names)

	dims := make([]*cloudwatch.Dimension, 0, len(names))
	for _, name := range names {
		dims = append(dims, &cloudwatch.Dimension{
			Name:  aws.String(name),
			Value: aws.String(q.Dimensions[name]),
		})
	}
	return dims
}

// parseDimensions reads name=value pairs.
func parseDimensions(pairs []string) (map[string]string, error) {
	dims := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("dimension %q is not in name=value form", pair)
		}
		dims[name] = value
	}
	return dims, nil
}

func newCloudWatchClient(region string) cloudwatchiface.CloudWatchAPI {
	sess := session.Must(session.NewSession(&aws.Config{Region: aws.String(region)}))
	return cloudwatch.New(sess)
}

// getMetric fetches the statistic one day at a time and keys the values by
// minutes ago.
func getMetric(client cloudwatchiface.CloudWatchAPI, q metricQuery, period *Period, now time.Time) (map[int]float64, error) {
	result := make(map[int]float64)

	for i := period.Days(); i > 0; i-- {
		res, err := client.GetMetricStatistics(&cloudwatch.GetMetricStatisticsInput{
			Dimensions: q.dimensions(),
			Namespace:  aws.String(q.Namespace),
			MetricName: aws.String(q.Metric),
			StartTime:  aws.Time(dayStart(now, i)),
			EndTime:    aws.Time(dayEnd(now, i)),
			Period:     aws.Int64(period.Period),
			Statistics: []*string{aws.String(q.Statistic)},
		})
		if err != nil {
			return nil, err
		}

		sumMetric(res.Datapoints, q.Statistic, now, result)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("no datapoints were found for '%s'", q.Metric)
	}

	return result, nil
}

func sumMetric(in []*cloudwatch.Datapoint, statistic string, now time.Time, result map[int]float64) {
	for _, point := range in {
		v, ok := datapointValue(point, statistic)
		if !ok {
			continue
		}
		// values sharing a minute are added up
		result[minutesAgo(point, now)] += v
	}
}

func datapointValue(point *cloudwatch.Datapoint, statistic string) (float64, bool) {
	var v *float64
	switch statistic {
	case cloudwatch.StatisticSum:
		v = point.Sum
	case cloudwatch.StatisticAverage:
		v = point.Average
	case cloudwatch.StatisticMaximum:
		v = point.Maximum
	case cloudwatch.StatisticMinimum:
		v = point.Minimum
	case cloudwatch.StatisticSampleCount:
		v = point.SampleCount
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

func minutesAgo(point *cloudwatch.Datapoint, now time.Time) int {
	since := now.Sub(*point.Timestamp)
	return int(math.Floor(float64(since / time.Minute)))
}

// metricSeries orders the metric by minutes ago.
func metricSeries(metric map[int]float64) xy {
	keys := make([]int, 0, len(metric))
	for k := range metric {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	data := xy{x: make([]float64, len(keys)), y: make([]float64, len(keys))}
	for i, k := range keys {
		data.x[i] = float64(k)
		data.y[i] = metric[k]
	}
	return data
}
