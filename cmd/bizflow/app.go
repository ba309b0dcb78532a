package main

import (
	"errors"
	"log/slog"

	"github.com/haricheung/bizflow/internal/audit"
	"github.com/haricheung/bizflow/internal/config"
	"github.com/haricheung/bizflow/internal/llm"
	"github.com/haricheung/bizflow/internal/roles/email"
	"github.com/haricheung/bizflow/internal/roles/evaluator"
	"github.com/haricheung/bizflow/internal/roles/meeting"
	"github.com/haricheung/bizflow/internal/roles/memory"
	"github.com/haricheung/bizflow/internal/roles/report"
	"github.com/haricheung/bizflow/internal/roles/planner"
	"github.com/haricheung/bizflow/internal/store"
)

// app holds the wired pipeline and the resources it must release.
type app struct {
	planner *planner.Planner
	store   store.Store
	audit   *audit.Recorder
}

// newApp builds every role from cfg. On error, anything already opened is closed.
func newApp(cfg *config.Config) (*app, error) {
	gen, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, err
	}

	ev, err := evaluator.New(cfg.Metrics.Path)
	if err != nil {
		st.Close()
		return nil, err
	}

	rec, err := audit.Open(cfg.Metrics.AuditPath)
	if err != nil {
		st.Close()
		return nil, err
	}

	mem := memory.New(st)
	p := planner.New(planner.Deps{
		Memory:    mem,
		Email:     email.New(mem, gen),
		Report:    report.New(),
		Meeting:   meeting.New(gen),
		Evaluator: ev,
		Audit:     rec,
		Inputs: planner.Inputs{
			SalesCSV:   cfg.Inputs.SalesCSV,
			Transcript: cfg.Inputs.MeetingTranscript,
		},
	})
	slog.Info("[CLI] pipeline ready",
		"store", cfg.Store.Backend, "metrics", ev.Path(), "audit", rec.Path(), "fake_llm", cfg.LLM.UseFake)
	return &app{planner: p, store: st, audit: rec}, nil
}

// Close releases the store and the audit journal.
func (a *app) Close() error {
	return errors.Join(a.audit.Close(), a.store.Close())
}
