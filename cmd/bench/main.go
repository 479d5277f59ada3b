// Command bench is the deterministic benchmark driver described in spec
// §6: a workload generator with a configurable add/cancel/replace mix and
// a live-order tracker, driving an in-process engine.Engine and reporting
// throughput and outcome totals. Grounded on
// lightsgoout-go-quantcup/main.go's generate-feed-measure shape, with
// cobra flag parsing, a run id, and structured per-batch logging adopted
// from VictorVVedtion-perp-dex's cobra/uuid/prometheus stack (see
// DESIGN.md).
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aeromatch/internal/engine"
	"github.com/aeromatch/internal/metrics"
	"github.com/aeromatch/internal/util"
)

type flags struct {
	mode        string
	ops         int64
	seed        int64
	cross       int
	add         int
	cancel      int
	replace     int
	minTick     int32
	maxTick     int32
	metricsPort int
	logFormat   string
}

func main() {
	f := &flags{}

	root := &cobra.Command{
		Use:   "bench",
		Short: "Deterministic matching engine benchmark driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f)
		},
	}

	root.Flags().StringVar(&f.mode, "mode", "match", "benchmark mode: maintenance|match")
	root.Flags().Int64Var(&f.ops, "ops", 5_000_000, "number of operations to drive")
	root.Flags().Int64Var(&f.seed, "seed", 12345, "PRNG seed for the workload generator")
	root.Flags().IntVar(&f.cross, "cross", 30, "percentage of new orders priced to cross (0..100)")
	root.Flags().IntVar(&f.add, "add", 60, "percentage of ops that submit a new order")
	root.Flags().IntVar(&f.cancel, "cancel", 25, "percentage of ops that cancel a resting order")
	root.Flags().IntVar(&f.replace, "replace", 15, "percentage of ops that replace a resting order")
	root.Flags().Int32Var(&f.minTick, "min-tick", 900, "lowest valid price tick")
	root.Flags().Int32Var(&f.maxTick, "max-tick", 1100, "highest valid price tick")
	root.Flags().IntVar(&f.metricsPort, "metrics-port", 0, "if nonzero, serve Prometheus metrics on this port for the run's duration")
	root.Flags().StringVar(&f.logFormat, "log-format", "text", "log encoding: text|json")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(f *flags) error {
	if f.mode != "maintenance" && f.mode != "match" {
		fmt.Fprintf(os.Stderr, "invalid --mode %q: must be maintenance or match\n", f.mode)
		os.Exit(1)
	}
	m := mix{Add: f.add, Cancel: f.cancel, Replace: f.replace}
	if !m.valid() {
		fmt.Fprintf(os.Stderr, "invalid mix: add=%d cancel=%d replace=%d must sum to 100\n", f.add, f.cancel, f.replace)
		os.Exit(1)
	}
	if f.cross < 0 || f.cross > 100 {
		fmt.Fprintf(os.Stderr, "invalid --cross %d: must be in 0..100\n", f.cross)
		os.Exit(1)
	}

	runID := uuid.NewString()
	logger, err := util.NewLogger(util.LoggerConfig{Level: util.LevelInfo, Format: f.logFormat, Output: os.Stdout})
	if err != nil {
		return err
	}
	defer logger.Close()
	log := logger.With("runID", runID, "mode", f.mode)

	var mc *metrics.Collector
	if f.metricsPort != 0 {
		mc = metrics.GetCollector()
		go func() {
			srv := &http.Server{Addr: fmt.Sprintf(":%d", f.metricsPort), Handler: metrics.Handler()}
			_ = srv.ListenAndServe()
		}()
		log.Info("metrics endpoint listening on :%d", f.metricsPort)
	}

	gen := newGenerator(f.seed, f.minTick, f.maxTick, f.cross)
	sink := &statsSink{live: gen.live}
	eng, err := engine.NewEngine(f.minTick, f.maxTick, int(f.ops/4)+1, uint64(f.ops)+1, sink)
	if err != nil {
		return err
	}

	const batchSize = 50_000
	start := time.Now()
	var sinceBatch time.Time = start

	var i int64
	for ; i < f.ops; i++ {
		switch m.pick(gen.rng) {
		case opAdd:
			order := gen.nextOrder()
			result := eng.Submit(order)
			if result != engine.Rejected {
				if result.Rested() {
					gen.live.add(order.ID)
				}
			}
			if mc != nil {
				mc.RecordSubmit(result.String())
			}
		case opCancel:
			id, ok := gen.live.randomID(gen.rng)
			if !ok {
				continue
			}
			cancelled := eng.Cancel(id)
			if cancelled {
				gen.live.remove(id)
			}
			if mc != nil {
				mc.RecordCancel(cancelled)
			}
		case opReplace:
			id, ok := gen.live.randomID(gen.rng)
			if !ok {
				continue
			}
			newQty := int64(1 + gen.rng.Intn(100))
			newPrice := gen.nextPrice(engine.Buy)
			res := eng.Replace(id, newPrice, newQty)
			if res.Success {
				if res.Rested() {
					gen.live.add(id) // same id, new resting remainder
				} else {
					gen.live.remove(id)
				}
			}
			if mc != nil {
				mc.RecordReplace(res.Success)
			}
		}

		if (i+1)%batchSize == 0 {
			now := time.Now()
			rate := float64(batchSize) / now.Sub(sinceBatch).Seconds()
			sinceBatch = now
			live := eng.LiveOrders()
			log.Info("batch complete: ops=%d trades=%d filledQty=%d live=%d rate=%.0f ops/s",
				i+1, sink.trades, sink.filledQty, live, rate)
			if gen.live.len() != live {
				log.Error("live-order mirror diverged from engine: client=%d engine=%d", gen.live.len(), live)
			}
			if mc != nil {
				mc.SetLiveOrders(live)
			}
		}
	}

	elapsed := time.Since(start)
	log.Info("run complete: ops=%d trades=%d filledQty=%d live=%d elapsed=%s rate=%.0f ops/s",
		f.ops, sink.trades, sink.filledQty, eng.LiveOrders(), elapsed, float64(f.ops)/elapsed.Seconds())

	fmt.Printf("ops=%d trades=%d filledQty=%d live=%d elapsed=%s\n",
		f.ops, sink.trades, sink.filledQty, eng.LiveOrders(), elapsed)
	return nil
}

// statsSink is the TradeSink the driver installs: it counts fills and
// prunes the driver's own liveSet mirror whenever the engine reports a
// maker fully consumed, exactly as spec §8 scenario 6 requires (the
// client-tracked live count must equal engine.LiveOrders() at every
// prune point).
type statsSink struct {
	trades    int64
	filledQty int64
	live      *liveSet
}

func (s *statsSink) OnTrade(qty int64, price int32, takerID, makerID uint64) {
	s.trades++
	s.filledQty += qty
}

func (s *statsSink) OnOrderClosed(makerID uint64) {
	s.live.remove(makerID)
}
