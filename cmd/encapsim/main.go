// Command encapsim wires the encapsulation core into a runnable
// process: GSE encode/decode over a carrier, the Slotted ALOHA
// controller on its own schedule tick, and the Prometheus metrics
// endpoint — the same "load config, build the stack, run a tick-based
// state machine" shape as the teacher's cmd/canopen, generalized from
// one CANopen node to one satellite spot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/satcom-sim/encap/pkg/aloha"
	"github.com/satcom-sim/encap/pkg/aloha/controller"
	"github.com/satcom-sim/encap/pkg/aloha/resolver"
	"github.com/satcom-sim/encap/pkg/carrier"
	"github.com/satcom-sim/encap/pkg/carrier/udp"
	"github.com/satcom-sim/encap/pkg/catalog"
	"github.com/satcom-sim/encap/pkg/gse/decoder"
	"github.com/satcom-sim/encap/pkg/gse/encoder"
	"github.com/satcom-sim/encap/pkg/metrics"
	"github.com/satcom-sim/encap/pkg/packet"
	"github.com/satcom-sim/encap/pkg/runtime"
)

const (
	stateInit = iota
	stateRunning
	stateResetting
)

func main() {
	log.SetLevel(log.InfoLevel)

	configPath := flag.String("config", "encapsim.yaml", "path to the process YAML config")
	catalogPath := flag.String("catalog", "catalog.ini", "path to the terminal/category catalog file")
	nodeTalID := flag.Int("node", 1, "this node's terminal id")
	spotID := flag.Int("spot", 0, "spot id this process serves")
	localAddr := flag.String("listen", "127.0.0.1:7000", "UDP address this process listens on")
	remoteAddr := flag.String("peer", "127.0.0.1:7001", "UDP address of the peer process")
	frameDuration := flag.Duration("frame-duration", 10*time.Millisecond, "Slotted ALOHA superframe duration")
	slotBudget := flag.Float64("slot-symbol-budget", 536, "bit length of one SA slot burst (divided by MODCOD efficiency to give symbols per slot)")
	flag.Parse()

	logger := slog.Default().With("instance", runtime.InstanceID())

	cfg, err := runtime.LoadConfig(*configPath, nil)
	if err != nil {
		fmt.Printf("could not load config %v: %v\n", *configPath, err)
		os.Exit(1)
	}

	if dump, err := cfg.DumpYAML(); err == nil {
		logger.Debug("effective config", "yaml", string(dump))
	}

	cl, err := catalog.LoadFile(*catalogPath)
	if err != nil {
		fmt.Printf("could not load catalog %v: %v\n", *catalogPath, err)
		os.Exit(1)
	}
	cl.ComputeSlots(catalog.Converter{FrameDuration: *frameDuration, SlotSymbolBudget: *slotBudget})
	if err := cl.AddTerminal(uint8(*nodeTalID)); err != nil {
		fmt.Printf("could not register this node in the catalog: %v\n", err)
		os.Exit(1)
	}
	if _, err := cl.AssignCategory(uint8(*nodeTalID)); err != nil {
		fmt.Printf("could not assign this node a category: %v\n", err)
		os.Exit(1)
	}

	delay := runtime.NewSatelliteDelay(cfg.DefaultDelay)

	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)
	go serveMetrics(cfg.MetricsListen, reg, logger)

	enc := encoder.New(encoder.Options{
		MaxPacketLength:  cfg.Encoder.MaxPacketLength,
		PackingThreshold: cfg.Encoder.PackingThreshold,
		MaxReuse:         cfg.Encoder.MaxReuse,
		Logger:           logger,
	})
	dec := decoder.New(uint8(*nodeTalID), logger)

	ctl := controller.New(uint16(*spotID), cl, resolverAlgorithms(cl), collector, logger)

	bus := udp.New(*localAddr, *remoteAddr, logger)
	if err := bus.Connect(); err != nil {
		fmt.Printf("could not connect carrier: %v\n", err)
		os.Exit(1)
	}
	defer bus.Disconnect()

	listener := &inboundListener{decoder: dec, collector: collector, log: logger}
	if err := bus.Subscribe(listener); err != nil {
		fmt.Printf("could not subscribe to carrier: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appState := stateInit
	scheduleTick := time.NewTicker(*frameDuration)
	defer scheduleTick.Stop()
	trafficTick := time.NewTicker(100 * time.Millisecond)
	defer trafficTick.Stop()

	sim := newSimulator(cl, uint8(*nodeTalID), cfg.Simulations)

	for appState != stateResetting {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			appState = stateResetting

		case <-scheduleTick.C:
			sim.injectSimulated(ctl)
			runScheduleTick(ctl, bus, dec, delay, collector, logger)

		case <-trafficTick.C:
			sim.generateUpperLayerTraffic(enc, bus, collector, logger)

		default:
			if appState == stateInit {
				log.WithFields(log.Fields{
					"node": *nodeTalID,
					"spot": *spotID,
				}).Info("encapsim ready")
				appState = stateRunning
			}
			time.Sleep(time.Millisecond)
		}
	}
}

// resolverAlgorithms picks DSA for every Slotted ALOHA category in the
// catalog, except names ending in "-crdsa" which opt into the iterative
// CRDSA resolver; categories that aren't Slotted ALOHA at all never get
// an entry and Controller.New defaults them to DSA if anything is ever
// deposited against them anyway.
func resolverAlgorithms(cl *catalog.Catalog) map[string]resolver.Algorithm {
	algos := make(map[string]resolver.Algorithm)
	for _, name := range cl.CategoryNames() {
		cat, ok := cl.Category(name)
		if !ok || !cat.IsSlottedAloha {
			continue
		}
		if strings.HasSuffix(name, "-crdsa") {
			algos[name] = resolver.CRDSA
		} else {
			algos[name] = resolver.DSA
		}
	}
	return algos
}

func runScheduleTick(ctl *controller.Controller, bus carrier.Carrier, dec *decoder.Decoder, delay *runtime.SatelliteDelay, collector *metrics.Collector, logger *slog.Logger) {
	if ms := delay.Get(); ms > 0 {
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}
	for _, result := range ctl.Schedule() {
		if len(result.Acks) == 0 && len(result.Propagated) == 0 {
			continue
		}
		logger.Debug("schedule tick",
			"category", result.Category,
			"acks", len(result.Acks),
			"propagated", len(result.Propagated),
			"tick_id", result.CollisionIDs.String())
		for _, ack := range result.Acks {
			if err := bus.Send(encodeAck(ack)); err != nil {
				logger.Warn("failed to send SA ack", "err", err)
			}
		}
		for _, inner := range result.Propagated {
			decoded, err := dec.Decode(inner.Data(), packet.FixedLength)
			if err != nil {
				collector.GsePacketsDropped.WithLabelValues("sa_decode_error").Inc()
				logger.Warn("failed to decode GSE packet carried over slotted ALOHA", "err", err)
				continue
			}
			if decoded.Outcome == decoder.OutcomeComplete {
				logger.Debug("upper packets recovered from slotted ALOHA PDU", "count", len(decoded.Packets))
			}
		}
	}
}

// encodeAck is a minimal wire form for a control packet: type byte,
// dst_tal_id (2 bytes) and the referenced unique id's pdu_id (4 bytes).
// The on-wire control-frame layout beyond what the schedule loop needs
// to exercise is out of this tool's scope.
func encodeAck(ack aloha.ControlPacket) []byte {
	frame := make([]byte, 7)
	frame[0] = byte(ack.Type)
	frame[1] = byte(ack.DstTalID >> 8)
	frame[2] = byte(ack.DstTalID)
	frame[3] = byte(ack.Payload.PduID >> 24)
	frame[4] = byte(ack.Payload.PduID >> 16)
	frame[5] = byte(ack.Payload.PduID >> 8)
	frame[6] = byte(ack.Payload.PduID)
	return frame
}

type inboundListener struct {
	decoder   *decoder.Decoder
	collector *metrics.Collector
	log       *slog.Logger
}

func (l *inboundListener) Handle(frame []byte) {
	result, err := l.decoder.Decode(frame, packet.FixedLength)
	if err != nil {
		l.collector.GsePacketsDropped.WithLabelValues("decode_error").Inc()
		l.log.Warn("failed to decode inbound frame", "err", err)
		return
	}
	switch result.Outcome {
	case decoder.OutcomeOverwrittenContext:
		l.collector.GsePacketsDropped.WithLabelValues("overwritten_context").Inc()
	case decoder.OutcomeContextNotInitialised:
		l.collector.GsePacketsDropped.WithLabelValues("context_not_initialised").Inc()
	}
}

func serveMetrics(listen string, reg *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	logger.Info("metrics listening", "addr", listen)
	if err := http.ListenAndServe(listen, mux); err != nil {
		logger.Error("metrics server stopped", "err", err)
	}
}
