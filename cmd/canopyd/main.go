// Canopy Core - threshold-driven greenhouse control.
//
// This is the main entry point for the Canopy Core daemon. It wires
// the hierarchical store, the MQTT telemetry ingest path, the control
// scheduler, and the optional InfluxDB mirror, then waits for a
// shutdown signal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/canopylabs/canopy-core/migrations"

	"github.com/canopylabs/canopy-core/internal/actuator"
	"github.com/canopylabs/canopy-core/internal/control"
	"github.com/canopylabs/canopy-core/internal/infrastructure/config"
	"github.com/canopylabs/canopy-core/internal/infrastructure/database"
	"github.com/canopylabs/canopy-core/internal/infrastructure/influxdb"
	"github.com/canopylabs/canopy-core/internal/infrastructure/logging"
	"github.com/canopylabs/canopy-core/internal/infrastructure/mqtt"
	"github.com/canopylabs/canopy-core/internal/infrastructure/store"
	"github.com/canopylabs/canopy-core/internal/ingest"
	"github.com/canopylabs/canopy-core/internal/notify"
	"github.com/canopylabs/canopy-core/internal/telemetry"
	"github.com/canopylabs/canopy-core/internal/threshold"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Canopy Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the store database and bring the schema up to date
	db, err := database.Open(database.Config{
		Path:        cfg.Store.Path,
		WALMode:     cfg.Store.WALMode,
		BusyTimeout: cfg.Store.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Store.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Store adapters share one hierarchical store over the database
	st := store.NewSQLiteStore(db.DB, cfg.StoreOpTimeout())
	samples := telemetry.NewAdapter(st)
	thresholds := threshold.NewAdapter(st)
	actuators := actuator.NewAdapter(st)
	sink := notify.NewSink(st)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Controller and scheduler
	controller := control.NewController(samples, thresholds, actuators, sink)
	controller.SetLogger(log)
	controller.SetStatePublisher(&mqttStatePublisher{client: mqttClient})
	if influxClient != nil {
		controller.SetActuationMirror(influxClient)
	}

	scheduler := control.NewScheduler(cfg.Control, controller)
	scheduler.SetLogger(log)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer scheduler.Stop()

	// Telemetry ingest
	ingestor := ingest.NewIngestor(mqttClient, samples, cfg.Control.Users)
	ingestor.SetLogger(log)
	ingestor.SetTrigger(scheduler)
	if influxClient != nil {
		ingestor.SetMirror(influxClient)
	}
	if err := ingestor.Start(); err != nil {
		return fmt.Errorf("starting ingestor: %w", err)
	}
	defer func() {
		log.Info("stopping ingestor")
		if stopErr := ingestor.Stop(); stopErr != nil {
			log.Error("error stopping ingestor", "error", stopErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order: ingestor, scheduler,
	// InfluxDB (if enabled), MQTT, database.

	log.Info("Canopy Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CANOPY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CANOPY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// mqttStatePublisher mirrors applied actuator state to the retained
// per-pin state topic.
type mqttStatePublisher struct {
	client *mqtt.Client
}

func (p *mqttStatePublisher) PublishState(userID string, pin, state int) error {
	topic := mqtt.Topics{}.ActuatorState(userID, pin)
	return p.client.PublishRetained(topic, []byte(strconv.Itoa(state)))
}
