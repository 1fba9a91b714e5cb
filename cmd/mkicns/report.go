package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Mavwarf/mkicns/internal/bridge"
	"github.com/Mavwarf/mkicns/internal/chime"
	"github.com/Mavwarf/mkicns/internal/config"
	"github.com/Mavwarf/mkicns/internal/history"
	"github.com/Mavwarf/mkicns/internal/notify"
	"github.com/Mavwarf/mkicns/internal/pipeline"
)

// outcomeOf classifies a finished run.
func outcomeOf(err error, dryRun bool) history.Outcome {
	switch {
	case err == nil && dryRun:
		return history.OutcomeDryRun
	case err == nil:
		return history.OutcomeSuccess
	case pipeline.Silent(err):
		return history.OutcomeCancelled
	}
	return history.OutcomeFailed
}

// record converts a run into a history row.
func record(res pipeline.Result, err error, dryRun bool, now time.Time) history.Record {
	r := history.Record{
		Time:     now,
		Document: res.Document,
		Width:    res.Width,
		Height:   res.Height,
		Outcome:  outcomeOf(err, dryRun),
		Message:  pipeline.Message(err),
	}
	// History keeps the full error chain, including the failing step.
	if r.Outcome == history.OutcomeFailed {
		r.Message = err.Error()
	}
	if err == nil && !dryRun {
		r.IcnsPath = res.Outcome.IcnsPath
	}
	for _, w := range res.Warnings {
		r.Warnings = append(r.Warnings, w.Kind.String())
	}
	for _, c := range []*bridge.Result{res.Outcome.Convert, res.Outcome.Remove} {
		if c != nil {
			r.ExitCodes = append(r.ExitCodes, c.ExitCode)
			r.Duration += c.Duration
		}
	}
	return r
}

// summary converts a history row into the notification payload.
func summary(r history.Record, files int) notify.Summary {
	return notify.Summary{
		Time:     r.Time,
		Document: r.Document,
		Width:    r.Width,
		Height:   r.Height,
		Outcome:  string(r.Outcome),
		Message:  r.Message,
		IcnsPath: r.IcnsPath,
		Warnings: r.Warnings,
		Files:    files,
	}
}

// report logs, publishes and chimes for a finished run, as configured.
// Every step is best-effort.
func report(cfg config.Config, res pipeline.Result, err error, dryRun bool) {
	r := record(res, err, dryRun, time.Now())

	if cfg.Log {
		history.LogBestEffort(r)
	}

	s := summary(r, len(res.Files))
	if cfg.MQTT.Broker != "" {
		t := notify.MQTTTarget{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Topic:    cfg.MQTT.Topic,
			Username: cfg.MQTT.Username,
			Password: os.ExpandEnv(cfg.MQTT.Password),
			QoS:      cfg.MQTT.QoS,
			Retain:   cfg.MQTT.Retain,
		}
		if perr := notify.PublishMQTT(t, s); perr != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", perr)
		}
	}
	if cfg.Webhook.URL != "" {
		if werr := notify.PostWebhook(cfg.Webhook.URL, cfg.Webhook.Headers, s); werr != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", werr)
		}
	}

	// A dry run or a cancelled prompt is not worth a sound.
	if cfg.Chime && !dryRun && r.Outcome != history.OutcomeCancelled {
		if cerr := chime.Play(chime.For(err == nil)); cerr != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", cerr)
		}
	}
}
