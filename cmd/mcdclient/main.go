package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mcd "github.com/lauterbach-mcd/mcd-client"
	"github.com/lauterbach-mcd/mcd-client/internal/fakeserver"
	"github.com/lauterbach-mcd/mcd-client/internal/logging"
	"github.com/lauterbach-mcd/mcd-client/internal/metrics"
	"github.com/lauterbach-mcd/mcd-client/internal/telemetry"
	"github.com/lauterbach-mcd/mcd-client/internal/transport"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

func main() {
	var (
		endpoint    = flag.String("endpoint", "", "MCD server endpoint as host:port (default 127.0.0.1:1235)")
		useJSON     = flag.Bool("json", false, "Use the line-delimited JSON transport instead of the binary one")
		fake        = flag.Bool("fake", false, "Start an in-process fake server and connect to it")
		probe       = flag.Bool("probe", false, "Probe the default endpoint for reachable servers and exit")
		verbose     = flag.Bool("v", false, "Verbose output")
		metricsAddr = flag.String("metrics-addr", "", "Serve prometheus metrics on this address (e.g. :9090)")
		otlp        = flag.String("otlp", "", "OTLP/gRPC collector endpoint for trace export (e.g. localhost:4317)")
	)
	flag.Parse()

	// Set up logging
	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	ctx := context.Background()

	if *probe {
		servers, err := mcd.ProbeServers(ctx, 5*time.Second)
		if err != nil {
			log.Fatalf("Probe failed: %v", err)
		}
		fmt.Printf("Servers reachable on %s:%d: %d\n", mcd.DefaultHost, mcd.DefaultPort, len(servers))
		for _, s := range servers {
			fmt.Printf("  host %q system %q running=%v\n", s.Server.Host, s.Server.SystemName, s.Running)
		}
		return
	}

	cfg := mcd.DefaultConfig()
	if *endpoint != "" {
		parsed, err := mcd.ParseConfig(*endpoint)
		if err != nil {
			log.Fatalf("Invalid endpoint '%s': %v", *endpoint, err)
		}
		cfg = parsed
	}

	if *fake {
		srv, err := fakeserver.New()
		if err != nil {
			log.Fatalf("Failed to start fake server: %v", err)
		}
		defer srv.Close()
		cfg, err = mcd.ParseConfig(srv.Addr())
		if err != nil {
			log.Fatalf("Fake server returned bad address '%s': %v", srv.Addr(), err)
		}
		logger.Info("started in-process fake server", "addr", srv.Addr())
	}

	var opts []mcd.ClientOption
	if *useJSON {
		opts = append(opts, mcd.WithTransportFactory(func(tc transport.Config) transport.Transport {
			return transport.NewJSONTransport(tc)
		}))
	}
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, mcd.WithMetrics(metrics.NewMetrics(reg)))
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			logger.Info("serving metrics", "addr", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}
	if *otlp != "" {
		provider, err := telemetry.NewProvider(ctx, *otlp)
		if err != nil {
			log.Fatalf("Failed to set up trace export: %v", err)
		}
		defer provider.Shutdown(ctx)
		opts = append(opts, mcd.WithTelemetry(provider))
	}

	client := mcd.NewClient(cfg, opts...)
	defer client.Exit()

	sh, err := client.OpenServer(ctx, "", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
	if err != nil {
		logger.Error("open-server failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Connected to server %s (uid %d)\n", sh.Host, sh.UID)

	numSystems, systems, err := client.QrySystems(ctx, 0, 16)
	if err != nil {
		logger.Error("qry-systems failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Systems: %d\n", numSystems)

	for _, sys := range systems {
		fmt.Printf("  system %q instance %q\n", sys.SystemName, sys.SystemInstance)
		_, devices, err := client.QryDevices(ctx, sys, 0, 16)
		if err != nil {
			logger.Warn("qry-devices failed", "system", sys.SystemName, "error", err)
			continue
		}
		for _, dev := range devices {
			fmt.Printf("    device %q\n", dev.DeviceName)
			_, cores, err := client.QryCores(ctx, dev, 0, 16)
			if err != nil {
				logger.Warn("qry-cores failed", "device", dev.DeviceName, "error", err)
				continue
			}
			for _, core := range cores {
				fmt.Printf("      core %q\n", core.CoreName)
				dumpCore(ctx, client, core)
			}
		}
	}
}

// dumpCore opens one core, prints its memory spaces and first few
// registers, reads the first register's value, and closes the core.
func dumpCore(ctx context.Context, client *mcd.Client, core wire.ConnInfo) {
	logger := logging.Default()

	start := time.Now()
	ch, err := client.OpenCore(ctx, core, nil)
	if err != nil {
		logger.Warn("open-core failed", "core", core.CoreName, "error", err)
		return
	}
	defer client.CloseCore(ctx, ch)
	logger.Debug("core database populated", "core", core.CoreName, "elapsed", time.Since(start))

	numSpaces, _, err := client.QryMemSpaces(ch.UID, 0, 0)
	if err != nil {
		logger.Warn("qry-mem-spaces failed", "error", err)
		return
	}
	_, spaces, err := client.QryMemSpaces(ch.UID, numSpaces, 0)
	if err != nil {
		logger.Warn("qry-mem-spaces failed", "error", err)
		return
	}
	fmt.Printf("        mem spaces: %d\n", numSpaces)
	for _, ms := range spaces {
		fmt.Printf("          [%d] %s (%d-bit, %#x..%#x)\n", ms.ID, ms.Name, ms.BitWidth, ms.MinAddr, ms.MaxAddr)
	}

	numRegs, _, err := client.QryRegMap(ch.UID, 0, 0, 0)
	if err != nil {
		logger.Warn("qry-reg-map failed", "error", err)
		return
	}
	_, regs, err := client.QryRegMap(ch.UID, 0, numRegs, 0)
	if err != nil {
		logger.Warn("qry-reg-map failed", "error", err)
		return
	}
	fmt.Printf("        registers: %d\n", numRegs)
	for _, reg := range regs {
		fmt.Printf("          [%d] %s (%d-bit, space %d, offset %#x)\n", reg.ID, reg.Name, reg.BitWidth, reg.MemSpaceID, reg.AddrOffset)
	}

	if len(regs) == 0 {
		return
	}

	tx := wire.Transaction{
		Addr:        wire.Addr{Address: regs[0].AddrOffset, MemSpaceID: regs[0].MemSpaceID},
		AccessType:  wire.AccessRead,
		AccessWidth: 4,
		NumBytesReq: 4,
		Data:        make([]byte, 4),
	}
	out, err := client.ExecuteTxList(ctx, ch, []wire.Transaction{tx})
	if err != nil {
		logger.Warn("execute-txlist failed", "error", err)
		return
	}
	if len(out) == 1 && out[0].NumBytesOk == 4 {
		fmt.Printf("        %s = %#02x %#02x %#02x %#02x\n", regs[0].Name, out[0].Data[0], out[0].Data[1], out[0].Data[2], out[0].Data[3])
	}
}
