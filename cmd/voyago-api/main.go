// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voyago/internal/ai"
	"voyago/internal/config"
	httptransport "voyago/internal/http"
	"voyago/internal/infra"
	"voyago/internal/maps"
	"voyago/internal/modules/dialogue"
	"voyago/internal/modules/itinerary"
	"voyago/internal/modules/planlog"
	"voyago/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llm, err := ai.NewGeminiClient(ctx, cfg.AI.GeminiKey, cfg.AI.LLM)
	if err != nil {
		log.Fatalf("gemini init: %v", err)
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	sessionStore := dialogue.NewRedisStore(redisClient, cfg.Session.TTL)

	var attractions itinerary.AttractionLookup
	if cfg.Maps.APIKey != "" {
		svc, err := maps.NewAttractionService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		attractions = svc
	} else {
		log.Println("MAPS_API_KEY not set, attraction hints disabled")
	}

	var recorder dialogue.PlanRecorder
	var plans httptransport.PlanHistory
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		planSvc := planlog.NewService(planlog.NewStore(dbPool))
		recorder = planSvc
		plans = planSvc
	} else {
		log.Println("VOYAGO_DB_DSN not set, plan archive disabled")
	}

	generator := itinerary.NewGenerator(llm, weather.NewClient(), attractions)

	dialogueSvc := dialogue.NewService(dialogue.Deps{
		Store:     sessionStore,
		Extractor: dialogue.NewExtractor(llm, dialogue.DefaultIntentConfig()),
		Generator: generator,
		LLM:       llm,
		Recorder:  recorder,
		Intents:   dialogue.DefaultIntentConfig(),
	})

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Chat:  dialogueSvc,
		Plans: plans,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("voyago-api listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
