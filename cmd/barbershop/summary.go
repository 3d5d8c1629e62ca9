package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"barbershop"
)

// writeSummary renders one row per customer in service order, then the
// rejected ones, followed by the shop counters read back from g.
func writeSummary(w io.Writer, report *barbershop.Report, g prometheus.Gatherer, elapsed time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Customer", "Admitted #", "Served #", "Waited", "Haircut"})
	table.SetAutoFormatHeaders(false)
	var data [][]string
	for _, v := range report.Served() {
		data = append(data, []string{
			strconv.Itoa(v.ID),
			strconv.FormatUint(v.Seq, 10),
			strconv.FormatUint(v.Turn, 10),
			v.Waited().Round(time.Millisecond).String(),
			v.FinishedAt.Sub(v.StartedAt).Round(time.Millisecond).String(),
		})
	}
	for _, id := range report.Rejected() {
		data = append(data, []string{strconv.Itoa(id), "-", "-", "-", "left, no chairs"})
	}
	table.AppendBulk(data)
	table.Render()

	counts, err := counters(g)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "chairs=%d arrivals=%d admitted=%d rejected=%d serviced=%d elapsed=%s\n",
		report.Chairs,
		int(counts["barbershop_arrivals_total"]),
		int(counts["barbershop_admitted_total"]),
		int(counts["barbershop_rejected_total"]),
		int(counts["barbershop_serviced_total"]),
		elapsed.Round(time.Millisecond),
	)
	return err
}

// counters sums every counter family in g by name.
func counters(g prometheus.Gatherer) (map[string]float64, error) {
	mfs, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("could not gather metrics: %w", err)
	}
	out := make(map[string]float64, len(mfs))
	for _, mf := range mfs {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, m := range mf.GetMetric() {
			out[mf.GetName()] += m.GetCounter().GetValue()
		}
	}
	return out, nil
}
