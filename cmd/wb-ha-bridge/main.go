// Command wb-ha-bridge runs the Wiren Board <-> Home Assistant MQTT
// bridge (spec.md's top-level process, A6), wiring every component
// together the way the teacher's own cmd/main.go assembles its gateway.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/spf13/cobra"

	"wb-ha-bridge/internal/berrors"
	"wb-ha-bridge/internal/command"
	"wb-ha-bridge/internal/config"
	"wb-ha-bridge/internal/haegress"
	"wb-ha-bridge/internal/httpapi"
	"wb-ha-bridge/internal/logger"
	"wb-ha-bridge/internal/metrics"
	"wb-ha-bridge/internal/model"
	"wb-ha-bridge/internal/mqttutil"
	"wb-ha-bridge/internal/router"
	"wb-ha-bridge/internal/supervisor"
	"wb-ha-bridge/internal/wiren"
)

var configPath string
var metricsAddr string

func main() {
	root := &cobra.Command{
		Use:   "wb-ha-bridge",
		Short: "Bridges Wiren Board MQTT telemetry into Home Assistant MQTT discovery",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Connect both brokers and run the bridge until interrupted",
		RunE:  runServe,
	}
	serve.Flags().StringVar(&configPath, "config", "/etc/wb-ha-bridge/config.yaml", "path to the bridge's YAML config")
	serve.Flags().StringVar(&metricsAddr, "metrics-addr", ":9100", "address to serve /metrics and /snapshot on")

	root.AddCommand(serve)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Level: cfg.General.LogLevel})
	errHandler := berrors.NewHandler(log)
	met := metrics.New()

	wirenSettings := config.NewWirenSettings(cfg)
	haSettings := config.NewHASettings(cfg)
	customisation := config.NewCustomisation(cfg)

	registry := model.NewRegistry()
	slots := model.NewSlots()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wirenClient := &mqttutil.PahoClient{Inner: paho.NewClient(brokerOptions(wirenSettings.BrokerHost, wirenSettings.BrokerPort, wirenSettings.Username, wirenSettings.Password, wirenSettings.ClientID))}
	wirenRouter := router.New(wirenClient, log)

	recorder := mqttutil.NewRecordingClient()
	haRealClient := &mqttutil.PahoClient{Inner: paho.NewClient(brokerOptions(haSettings.BrokerHost, haSettings.BrokerPort, haSettings.Username, haSettings.Password, haSettings.ClientID))}
	haClient := &mqttutil.TeeClient{Inner: haRealClient, Recorder: recorder}
	haRouter := router.New(haClient, log)

	commandPublisher := command.New(wirenRouter, wirenSettings, log)
	haPublisher := haegress.NewPublisher(registry, customisation, haRouter, slots, haSettings, log, commandPublisher)
	ingress := wiren.New(ctx, registry, haPublisher, log)

	sup := supervisor.New(
		wirenClient, wirenRouter, func(rtr *router.Router) error {
			met.SetGauge(metrics.WirenConnected, 1)
			return ingress.Subscribe(rtr, wirenSettings.SubscribeQoS)
		},
		haClient, haRouter, func(rtr *router.Router) error {
			met.SetGauge(metrics.HAConnected, 1)
			if err := haPublisher.Subscribe(ctx, rtr, haSettings.SubscribeQoS); err != nil {
				return err
			}
			haPublisher.PublishAllDevices(ctx)
			return nil
		},
		slots, log, errHandler,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", httpapi.NewMetricsHandler(met))
	mux.Handle("/snapshot", httpapi.NewSnapshotHandler(recorder, log))
	httpServer := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server: %v", err)
		}
	}()

	sup.Run(ctx)

	log.Info("shutting down")
	sup.Stop()
	_ = httpServer.Close()
	return nil
}

func brokerOptions(host string, port int, username, password, clientID string) *paho.ClientOptions {
	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", host, port))
	opts.SetClientID(clientID)
	if username != "" {
		opts.SetUsername(username)
	}
	if password != "" {
		opts.SetPassword(password)
	}
	opts.SetAutoReconnect(false)
	return opts
}
