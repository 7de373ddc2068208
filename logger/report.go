package logger

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type sinkStat struct {
	writes int64
	bytes  int64
}

var (
	warnCount   int64
	errorCount  int64
	fetchCount  int64
	fetchBytes  int64
	rowsParsed  int64
	rowsDropped int64
	sinks       sync.Map // map[string]*sinkStat
)

func recordWarn(string) {
	atomic.AddInt64(&warnCount, 1)
}

func recordError(string) {
	atomic.AddInt64(&errorCount, 1)
}

// IncrementFetch records one completed source download of the given size.
func IncrementFetch(size int) {
	atomic.AddInt64(&fetchCount, 1)
	atomic.AddInt64(&fetchBytes, int64(size))
}

// IncrementRowsParsed records rows that survived parsing.
func IncrementRowsParsed(n int) {
	atomic.AddInt64(&rowsParsed, int64(n))
}

// IncrementRowsDropped records rows rejected during parsing or
// normalization.
func IncrementRowsDropped(n int) {
	atomic.AddInt64(&rowsDropped, int64(n))
}

// RecordSinkWrite records one write to a named output sink (csv,
// parquet, s3, database) and the payload size.
func RecordSinkWrite(name string, size int) {
	v, _ := sinks.LoadOrStore(name, &sinkStat{})
	ss := v.(*sinkStat)
	atomic.AddInt64(&ss.writes, 1)
	atomic.AddInt64(&ss.bytes, int64(size))
}

func startReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

// StartReport begins periodic logging of system and pipeline statistics.
// It exposes the internal startReport function for use by other packages.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	startReport(ctx, log, interval)
}

func logReport(ctx context.Context, log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")
	sinkData := map[string]map[string]int64{}
	sinks.Range(func(k, v any) bool {
		name := k.(string)
		ss := v.(*sinkStat)
		sinkData[name] = map[string]int64{
			"writes": atomic.LoadInt64(&ss.writes),
			"bytes":  atomic.LoadInt64(&ss.bytes),
		}
		return true
	})

	cpuPct := 0.0
	if len(cpuPercent) > 0 {
		cpuPct = cpuPercent[0]
	}

	fields := Fields{
		"warns":        atomic.LoadInt64(&warnCount),
		"errors":       atomic.LoadInt64(&errorCount),
		"fetches":      atomic.LoadInt64(&fetchCount),
		"fetch_bytes":  atomic.LoadInt64(&fetchBytes),
		"rows_parsed":  atomic.LoadInt64(&rowsParsed),
		"rows_dropped": atomic.LoadInt64(&rowsDropped),
		"goroutines":   runtime.NumGoroutine(),
		"cpu_percent":  cpuPct,
		"memory_mb":    int64(memStats.Used) / 1024 / 1024,
		"disk_mb":      int64(diskStats.Used) / 1024 / 1024,
		"sinks":        sinkData,
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	var data []cwtypes.MetricDatum
	data = append(data,
		cwtypes.MetricDatum{MetricName: aws.String("CPUPercent"), Unit: cwtypes.StandardUnitPercent, Value: aws.Float64(cpuPct)},
		cwtypes.MetricDatum{MetricName: aws.String("MemoryMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(memStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("DiskMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(diskStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("Warns"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["warns"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Errors"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Fetches"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["fetches"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("FetchBytes"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(fields["fetch_bytes"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("RowsParsed"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["rows_parsed"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("RowsDropped"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["rows_dropped"].(int64)))},
	)

	for name, stats := range sinkData {
		data = append(data,
			cwtypes.MetricDatum{
				MetricName: aws.String("SinkWrites"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Sink"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["writes"])),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String("SinkBytes"),
				Unit:       cwtypes.StandardUnitBytes,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Sink"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["bytes"])),
			},
		)
	}

	publishMetrics(ctx, data)
}
