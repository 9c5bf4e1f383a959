// Command brindled is the daemon binary: it loads a configuration file,
// opens the configured content store, starts the RPC and metrics HTTP
// listeners, and blocks until SIGINT/SIGTERM before draining cleanly.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/brindle-bt/brindle/config"
	"github.com/brindle-bt/brindle/pkg/log"
	"github.com/brindle-bt/brindle/pkg/metrics"
	"github.com/brindle-bt/brindle/pkg/stop"
	"github.com/brindle-bt/brindle/quark"
	"github.com/brindle-bt/brindle/rpc"
	"github.com/brindle-bt/brindle/store"

	// Backend registration: importing a backend package for its side
	// effect of calling store.Register at init time. All three ship in
	// this binary; the config file's store.driver picks which one Open
	// actually constructs.
	_ "github.com/brindle-bt/brindle/store/memory"
	_ "github.com/brindle-bt/brindle/store/redis"
	_ "github.com/brindle-bt/brindle/store/sqlite"
)

func main() {
	var configFilePath string
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "brindled",
		Short: "Content-addressed bencode store daemon",
		Long:  "brindled serves a bencode-in/bencode-out RPC over a pluggable content store",
		Run: func(cmd *cobra.Command, args []string) {
			log.SetDebug(debug)
			if err := run(configFilePath); err != nil {
				log.Fatal(err)
			}
		},
	}

	rootCmd.Flags().StringVar(&configFilePath, "config", "", "location of the YAML configuration file (uses built-in defaults if empty)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}

func run(configFilePath string) error {
	cfg, err := config.Open(configFilePath)
	if err != nil {
		return err
	}

	for _, name := range cfg.Quark.Preregister {
		quark.Intern(name)
	}

	st, err := store.Open(&cfg.Store)
	if err != nil {
		return err
	}

	group := stop.NewGroup()

	// The redis backend exposes its connection pool stats as a
	// point-in-time query rather than an event; sample it on an interval
	// into metrics.RedisActiveConns for as long as the daemon runs.
	if r, ok := st.(activeConnsReporter); ok {
		stopSampling := make(chan struct{})
		go sampleActiveConns(r, stopSampling)
		group.Add(func() stop.Result {
			ch := make(stop.Channel)
			go func() {
				close(stopSampling)
				ch.Done()
			}()
			return ch.Result()
		})
	}

	rpcServer := rpc.New(cfg.RPC.Addr, st, cfg.RPC.ShutdownTimeout)
	group.Add(func() stop.Result {
		ch := make(stop.Channel)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.RPC.ShutdownTimeout)
			defer cancel()
			ch.Done(rpcServer.Shutdown(ctx))
		}()
		return ch.Result()
	})

	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			log.Info("metrics: listening", log.Fields{"addr": cfg.Metrics.Addr})
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics: listener failed", log.Err(err))
			}
		}()
		group.Add(func() stop.Result {
			ch := make(stop.Channel)
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				ch.Done(metricsServer.Shutdown(ctx))
			}()
			return ch.Result()
		})
	}

	group.Add(func() stop.Result {
		ch := make(stop.Channel)
		go func() { ch.Done(st.Close()) }()
		return ch.Result()
	})

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	drained := make(chan struct{})
	go func() {
		<-shutdown
		log.Info("brindled: shutting down")
		for _, err := range group.Stop().Wait() {
			log.Error("brindled: error during shutdown", log.Err(err))
		}
		close(drained)
	}()

	if err := rpcServer.ListenAndServe(); err != nil {
		return err
	}
	// ListenAndServe returns as soon as Shutdown begins; wait for every
	// component in the group to finish stopping before returning.
	<-drained
	return nil
}

// activeConnsReporter is implemented by store backends that hold a
// connection pool worth watching (currently only store/redis.Store).
type activeConnsReporter interface {
	ActiveConns() int
}

func sampleActiveConns(r activeConnsReporter, stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.RedisActiveConns.Set(float64(r.ActiveConns()))
		case <-stop:
			return
		}
	}
}
