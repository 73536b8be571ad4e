package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"brokersum/domain/broker"
)

// digestTopBrokers caps how many ranked brokers the digest mentions.
const digestTopBrokers = 5

// buildDigest condenses a reporting window into the plain-text brief fed
// to the summarization model: window, market totals with mean, median,
// spread and linear trend, plus the leading brokers with their shares.
func buildDigest(ds *broker.Dataset, field broker.Field, from, to time.Time) (string, error) {
	_, market, err := ds.Summarize(broker.SummaryQuery{
		Brokers: []string{broker.MarketLabel},
		Fields:  []broker.Field{field},
		Mode:    broker.ModeDaily,
		From:    from,
		To:      to,
	})
	if err != nil {
		return "", err
	}
	if len(market) == 0 {
		return "", fmt.Errorf("no activity between %s and %s", from.Format("2 Jan 2006"), to.Format("2 Jan 2006"))
	}

	totals := make([]float64, len(market))
	days := make([]float64, len(market))
	for i, p := range market {
		totals[i] = float64(p.Total)
		days[i] = float64(i)
	}

	mean, _ := stats.Mean(totals)
	median, _ := stats.Median(totals)
	sd, _ := stats.StandardDeviation(totals)

	var b strings.Builder
	fmt.Fprintf(&b, "Stock exchange broker activity report, %s measure, %s to %s, %d trading days.\n",
		field, from.Format("2 Jan 2006"), to.Format("2 Jan 2006"), len(market))
	fmt.Fprintf(&b, "Daily market %s averaged %s (median %s, standard deviation %s).\n",
		field, broker.FormatCompact(mean), broker.FormatCompact(median), broker.FormatCompact(sd))

	// A regression over the daily totals gives the window's direction.
	if len(totals) >= 2 {
		_, slope := stat.LinearRegression(days, totals, nil, false)
		fmt.Fprintf(&b, "The linear trend over the window is %s at %s per trading day.\n",
			trendWord(slope, mean), broker.FormatCompact(absFloat(slope)))
	}

	rows, grand, err := ds.Rank(broker.RankingQuery{Field: field, From: from, To: to})
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "Total market %s for the window was %s across %d brokers.\n",
		field, broker.FormatCompact(float64(grand)), len(rows))

	top := rows
	if len(top) > digestTopBrokers {
		top = top[:digestTopBrokers]
	}
	b.WriteString("Leading brokers: ")
	parts := make([]string, 0, len(top))
	for _, r := range top {
		parts = append(parts, fmt.Sprintf("%s with %s (%s of the market)",
			r.Broker, broker.FormatCompact(float64(r.Total)), broker.FormatPct(r.Share)))
	}
	b.WriteString(strings.Join(parts, "; "))
	b.WriteString(".\n")

	return b.String(), nil
}

// trendWord names a slope relative to the mean daily level. Moves under
// a tenth of a percent per day read as flat.
func trendWord(slope, mean float64) string {
	if mean != 0 && absFloat(slope)/absFloat(mean) < 0.001 {
		return "flat"
	}
	if slope > 0 {
		return "rising"
	}
	if slope < 0 {
		return "falling"
	}
	return "flat"
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
