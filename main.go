package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/petuhovskiy/urn-lights/internal/app"
	"github.com/petuhovskiy/urn-lights/internal/log"
	"github.com/petuhovskiy/urn-lights/internal/rules"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetReportCaller(true)
	logrus.SetLevel(logrus.DebugLevel)

	undo := log.DefaultGlobals()
	defer undo()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	base, err := app.NewAppFromEnv(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("failed to init app")
	}
	base.StartPrometheus()

	executor := rules.NewExecutor(base)
	ruleList, err := executor.ParseList(base.Config.Rules)
	if err != nil {
		logrus.WithError(err).Fatal("failed to parse rules")
	}
	if len(ruleList) == 0 {
		logrus.Warn("no rules configured, set RULES to a JSON array of rule descriptors")
	}

	for _, rule := range ruleList {
		rule := rule
		base.Register.Go(func() {
			err := executor.Execute(ctx, rule)
			if err != nil && ctx.Err() == nil {
				log.Error(ctx, "rule finished with error", zap.Error(err))
			}
		})
	}

	base.Register.WaitAll(ctx)

	// ctx is already canceled here on shutdown, flush with a fresh one.
	if err := base.Close(context.Background()); err != nil {
		logrus.WithError(err).Error("failed to close app")
	}
}
