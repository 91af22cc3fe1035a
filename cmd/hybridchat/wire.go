package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridchat/internal/config"
	"github.com/kailas-cloud/hybridchat/internal/db"
	dbRedis "github.com/kailas-cloud/hybridchat/internal/db/redis"
	"github.com/kailas-cloud/hybridchat/internal/domain/knowledge"
	"github.com/kailas-cloud/hybridchat/internal/domain/query"
	"github.com/kailas-cloud/hybridchat/internal/metrics"
	kbfiles "github.com/kailas-cloud/hybridchat/internal/repository/knowledge/files"
	kbredis "github.com/kailas-cloud/hybridchat/internal/repository/knowledge/redis"
	"github.com/kailas-cloud/hybridchat/internal/repository/runcache"
	chiTransport "github.com/kailas-cloud/hybridchat/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/hybridchat/internal/transport/openai"
	chatuc "github.com/kailas-cloud/hybridchat/internal/usecase/chat"
	"github.com/kailas-cloud/hybridchat/internal/usecase/grounding"
	healthuc "github.com/kailas-cloud/hybridchat/internal/usecase/health"
	knowledgeuc "github.com/kailas-cloud/hybridchat/internal/usecase/knowledge"
	"github.com/kailas-cloud/hybridchat/internal/usecase/routing"
)

// app is the assembled object graph shared by serve and ask.
type app struct {
	chat     *chatuc.Service
	health   *healthuc.Service
	snapshot *knowledge.Snapshot         // nil when no knowledge source is configured
	agent    chiTransport.AgentDescriber // nil when no grounded service is configured
	store    db.Store                    // nil when no database is configured
}

// Close releases the database connection, if any.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// openStore connects to the configured database. Returns nil when none is configured.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (db.Store, error) {
	if !cfg.Database.Enabled() {
		return nil, nil
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.Strings("db_addrs", cfg.Database.Addrs))
	return store, nil
}

// knowledgeSource picks the configured source. Returns nil for "none".
func knowledgeSource(cfg config.Config, store db.Store, logger *zap.Logger) knowledgeuc.Source {
	switch cfg.Knowledge.Source {
	case config.SourceFiles:
		return kbfiles.New(cfg.Knowledge.Dir, logger)
	case config.SourceRedis:
		if store != nil {
			return kbredis.New(store, cfg.Knowledge.KeyPrefix)
		}
	}
	return nil
}

// buildApp wires the query pipeline: classifier, matcher, router, delegator, chat.
// store may be nil.
func buildApp(ctx context.Context, cfg config.Config, store db.Store, logger *zap.Logger) (*app, error) {
	metrics.RegisterGroundingMetrics()
	metrics.RegisterKnowledgeMetrics()

	vocab, err := config.LoadVocabulary(cfg.Knowledge.VocabularyPath)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	classifier, err := query.NewClassifier(vocab)
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	a := &app{store: store}

	src := knowledgeSource(cfg, store, logger)
	snapshot := knowledgeuc.LoadSnapshot(ctx, src, logger, metrics.KnowledgeRecords)
	if src != nil {
		a.snapshot = snapshot
	}
	matcher := knowledgeuc.New(snapshot, classifier, vocab, metrics.KnowledgeSearchTotal)
	router := routing.New(vocab.RealtimeTriggers, metrics.RouteDecisionsTotal)

	// Pass nil interfaces (not typed nil pointers) when grounding is off.
	var (
		svc     grounding.Service
		checker healthuc.GroundedChecker
	)
	if cfg.Grounding.Provider == config.ProviderOpenAI {
		gs := openaiTransport.NewGroundedService(&openaiTransport.Config{
			APIKey:       cfg.Grounding.APIKey,
			BaseURL:      cfg.Grounding.BaseURL,
			AssistantID:  cfg.Grounding.AssistantID,
			Model:        cfg.Grounding.Model,
			Instructions: cfg.Grounding.Instructions,
			Logger:       logger,
		})
		svc, checker, a.agent = gs, gs, gs
	}

	var delegator chatuc.Delegator = grounding.New(svc, grounding.Config{
		PollInterval: cfg.Grounding.PollInterval(),
		PollBudget:   cfg.Grounding.PollBudget(),
	})
	if store != nil && svc != nil && cfg.Grounding.RunCacheTTL() > 0 {
		delegator = runcache.New(delegator, store, cfg.Grounding.RunCacheTTL(), metrics.RunCacheTotal, logger)
	}

	a.chat = chatuc.New(classifier, matcher, router, delegator, chatuc.Options{
		MergeInternal: cfg.Chat.MergeInternal,
	})

	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	a.health = healthuc.New(pinger, checker, healthuc.Capabilities{
		KnowledgeSource:    src != nil,
		GroundedCompletion: svc != nil,
	})

	logger.Info("Query pipeline ready",
		zap.String("knowledge_source", cfg.Knowledge.Source),
		zap.Int("knowledge_records", snapshot.Len()),
		zap.String("grounding_provider", cfg.Grounding.Provider),
		zap.Bool("run_cache", store != nil && svc != nil && cfg.Grounding.RunCacheTTL() > 0),
	)
	return a, nil
}
