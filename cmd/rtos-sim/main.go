// Command rtos-sim boots the kernel on the goroutine-backed simulated
// port and runs a small demo workload: a producer task that increments
// a shared counter under a Mutex and a reporter task that prints it
// periodically, until interrupted.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/behrlich/go-rtos"
	"github.com/behrlich/go-rtos/internal/logging"
	"github.com/behrlich/go-rtos/internal/port/sim"
	"github.com/behrlich/go-rtos/ksync"
)

func main() {
	var (
		verbose       = flag.Bool("v", false, "verbose kernel trace logging")
		tickInterval  = flag.Duration("tick", time.Millisecond, "simulated tick interval")
		ticksPerMilli = flag.Uint64("resolution", 1, "ticks per millisecond")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}

	p := sim.New()
	if err := rtos.Init(
		rtos.WithPort(p),
		rtos.WithLogger(logging.NewLogger(logConfig)),
		rtos.WithTicksPerMillisecond(*ticksPerMilli),
	); err != nil {
		log.Fatalf("rtos.Init: %v", err)
	}

	counter := &ksync.Mutex[uint64]{}

	producer := func(args *rtos.Args) {
		for {
			g := counter.Lock()
			*g.Deref()++
			g.Unlock()
			rtos.Yield()
		}
	}
	reporter := func(args *rtos.Args) {
		for {
			g := counter.Lock()
			n := *g.Deref()
			g.Unlock()
			fmt.Printf("counter=%d tick=%d\n", n, rtos.GetTick())
			rtos.SleepFor(rtos.FOREVER_CHAN, 500)
		}
	}

	if _, err := rtos.NewTask(producer, nil, 2048, rtos.Normal, "producer"); err != nil {
		log.Fatalf("rtos.NewTask(producer): %v", err)
	}
	if _, err := rtos.NewTask(reporter, nil, 2048, rtos.Normal, "reporter"); err != nil {
		log.Fatalf("rtos.NewTask(reporter): %v", err)
	}

	stopTick := p.StartTicker(*tickInterval)
	defer stopTick()

	go rtos.StartScheduler()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	snap := rtos.Metrics()
	fmt.Printf("final metrics: switches=%d faults=%d tickWraps=%d\n",
		snap.ContextSwitches, snap.Faults, snap.TickWraps)
}
