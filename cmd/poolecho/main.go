// Command poolecho spins up a messaging pool of randoms.Randoms items,
// exercises echo, add, and sum requests against it, and shuts it down -
// a small end-to-end exerciser for the construct/send/shutdown surface.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pool "github.com/cainem/messagingpool"
	"github.com/cainem/messagingpool/internal/tracewriters"
	"github.com/cainem/messagingpool/samples/randoms"
)

func main() {
	var workers int
	var payload string
	var itemID uint64
	var traceDir string

	root := &cobra.Command{
		Use:   "poolecho",
		Short: "Spin up a messaging pool and exercise echo/add/sum requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			opts := []pool.Option[randoms.Init, randoms.Msg, *randoms.Randoms]{
				pool.WithLogger[randoms.Init, randoms.Msg, *randoms.Randoms](logger),
			}
			if traceDir != "" {
				if err := os.MkdirAll(traceDir, 0o755); err != nil {
					return fmt.Errorf("creating trace dir: %w", err)
				}
				traces := tracewriters.New(30*time.Second, func(id uint64) (io.WriteCloser, error) {
					return os.OpenFile(
						filepath.Join(traceDir, fmt.Sprintf("item-%d.trace", id)),
						os.O_CREATE|os.O_WRONLY|os.O_APPEND,
						0o644,
					)
				})
				defer traces.Close()
				opts = append(opts, pool.WithHooks[randoms.Init, randoms.Msg, *randoms.Randoms](tracingHooks(traces)))
			}

			p, err := pool.New[randoms.Init, randoms.Msg, *randoms.Randoms](
				workers,
				randoms.NewItem,
				opts...,
			)
			if err != nil {
				return fmt.Errorf("building pool: %w", err)
			}
			defer p.Shutdown()

			echoResp, err := p.Echo(pool.EchoRequest{ID: itemID, Payload: payload})
			if err != nil {
				return fmt.Errorf("echo: %w", err)
			}
			fmt.Printf("worker %d answered echo %q\n", echoResp.RespondingWorker, echoResp.Payload)

			added, err := p.Add(randoms.Init{ID: itemID})
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}
			if added.Err != nil {
				return fmt.Errorf("add item %d: %w", itemID, added.Err)
			}

			sumResp, err := p.SendAndReceiveOne(randoms.SumRequest{ID: itemID})
			if err != nil {
				return fmt.Errorf("sum: %w", err)
			}
			sum, ok := sumResp.(randoms.SumResponse)
			if !ok {
				return fmt.Errorf("sum: unexpected response type %T", sumResp)
			}
			fmt.Printf("sum for item %d: %s\n", itemID, sum.Result.String())
			return nil
		},
	}

	root.Flags().IntVar(&workers, "workers", 4, "number of pool workers")
	root.Flags().StringVar(&payload, "payload", "ping", "echo payload to send")
	root.Flags().Uint64Var(&itemID, "item-id", 0, "id of the randoms item to add and query")
	root.Flags().StringVar(&traceDir, "trace-dir", "", "if set, write a per-item trace file here via the pre/post-process hooks")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// tracingHooks wires a tracewriters.Cache into the pre/post-process hooks,
// writing one line per item message through the writer for that message's
// CurrentItemID. The lookup and the write run inside the hook on the
// worker's goroutine; closing idle writers is left to the cache's own TTL
// eviction.
func tracingHooks(traces *tracewriters.Cache) pool.Hooks {
	trace := func(ctx context.Context, phase string) {
		id, ok := pool.CurrentItemID(ctx)
		if !ok {
			return
		}
		w, err := traces.Writer(id)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "%s item %d at %s\n", phase, id, time.Now().Format(time.RFC3339Nano))
	}
	return pool.Hooks{
		PreProcess:  func(ctx context.Context, _ pool.ID, _ *any) { trace(ctx, "start") },
		PostProcess: func(ctx context.Context, _ pool.ID, _ *any) { trace(ctx, "end") },
	}
}
