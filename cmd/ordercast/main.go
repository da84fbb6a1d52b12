package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"ordercast/config"
	"ordercast/engine"
	"ordercast/groups"
	"ordercast/messaging"
	"ordercast/notify"
	"ordercast/store"
	"ordercast/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "ordercast.yaml", "path to config file")
	flag.Parse()

	if *showVersion {
		fmt.Println("ordercast", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	log.Printf("ordercast: database open (%s)", cfg.Database.Driver)

	// Groups, optionally spread across instances through Redis
	registry := groups.NewRegistry()
	var publisher groups.Publisher = registry
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisClient.Ping(ctx).Err()
		if err == nil {
			backplane := groups.NewRedisBackplane(redisClient, registry, cfg.Redis.ChannelPrefix)
			err = backplane.Start(context.Background())
			if err == nil {
				publisher = backplane
				defer backplane.Stop()
			}
		}
		cancel()
		if err != nil {
			log.Printf("ordercast: redis not available (%v), groups are local to this instance", err)
		} else {
			log.Printf("ordercast: redis backplane connected (%s)", cfg.Redis.Address)
		}
	}

	agg := notify.New(db, publisher, nil)

	// Messaging client
	var msgClient *messaging.Client
	if cfg.Messaging.Backend != "" {
		msgClient = messaging.NewClient(&cfg.Messaging)
		if err := msgClient.Connect(); err != nil {
			log.Printf("ordercast: messaging connect failed (%v)", err)
		} else {
			log.Printf("ordercast: messaging connected (%s)", msgClient.Backend())
		}
		defer msgClient.Close()
	}

	// Engine
	eng := engine.New(engine.Config{
		DB:         db,
		Aggregator: agg,
		MsgClient:  msgClient,
		Debug:      cfg.Debug,
	})
	eng.Start()
	defer eng.Stop()

	// Order-change consumer
	if msgClient != nil {
		consumer := messaging.NewConsumer(msgClient, cfg.Messaging.OrdersTopic, eng.InboundHandler())
		if err := consumer.Start(); err != nil {
			log.Printf("ordercast: consumer subscribe failed: %v", err)
		} else {
			log.Printf("ordercast: consumer listening on %s", cfg.Messaging.OrdersTopic)
		}
	}

	// Web server
	handler, stopWeb := www.NewRouter(eng, registry, publisher, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("ordercast: web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Printf("ordercast: ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("ordercast: shutting down...")
	stopWeb()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Printf("ordercast: stopped")
}
