// vitalsmon is a headless version of vitals that prints one summary line per
// sample to stdout. Useful for piping into logs or a terminal multiplexer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/psvitals/vitals/collector"
	"github.com/psvitals/vitals/config"
	"github.com/psvitals/vitals/model"
)

func main() {
	cfg := config.Load()

	interval := flag.Int("interval", cfg.IntervalSec, "Sample interval in seconds")
	duration := flag.Int("duration", 0, "How long to run in seconds (0=forever)")
	top := flag.Int("top", 1, "Number of top-CPU processes to name per line")
	flag.Parse()

	if *interval < 1 {
		*interval = 1
	}

	orc := collector.NewOrchestrator(collector.Options{
		Timeout:           cfg.AdapterTimeout(),
		CPUSampleWindow:   cfg.CPUSampleWindow(),
		DisableRichSource: cfg.DisableRichSource,
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(*interval) * time.Second)
	defer ticker.Stop()

	deadline := time.Time{}
	if *duration > 0 {
		deadline = time.Now().Add(time.Duration(*duration) * time.Second)
	}

	fmt.Printf("vitals monitor — %s sources\n", orc.Platform())
	fmt.Println(strings.Repeat("=", 80))

	for {
		select {
		case <-sig:
			fmt.Println("\nStopped.")
			return
		case <-ticker.C:
			if !deadline.IsZero() && time.Now().After(deadline) {
				fmt.Println("\nDuration reached.")
				return
			}
			snap := orc.CollectSystemStatus(context.Background())

			ts := snap.Timestamp.Format("15:04:05")

			cpuStr := "cpu=?"
			if snap.CPU.UsagePercent >= 0 {
				cpuStr = fmt.Sprintf("cpu=%.1f%%", snap.CPU.UsagePercent)
			}
			memStr := "mem=?"
			if snap.Memory.UsagePercent >= 0 {
				memStr = fmt.Sprintf("mem=%.1f%%", snap.Memory.UsagePercent)
			}
			loadStr := "load=?"
			if len(snap.LoadAverage) == 3 {
				loadStr = fmt.Sprintf("load=%.2f", snap.LoadAverage[0])
			}

			line := fmt.Sprintf("[%s] %s | %s | %s | procs=%d",
				ts, cpuStr, memStr, loadStr, len(snap.Processes))

			for i, p := range snap.Processes {
				if i >= *top {
					break
				}
				if p.CPUPercent < 0 {
					break // list is CPU-sorted; nothing measured beyond here
				}
				line += fmt.Sprintf("  top=%s(%d) %.1f%%", p.Name, p.PID, p.CPUPercent)
			}

			fmt.Println(line)

			if z := snap.ProcessCounts[model.StatusZombie]; z > 0 {
				fmt.Printf("  zombies=%d\n", z)
			}
		}
	}
}
