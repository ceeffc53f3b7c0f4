package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kozoukioden/HatimChainApp/internal/domain"
	httpapi "github.com/kozoukioden/HatimChainApp/internal/http"
	"github.com/kozoukioden/HatimChainApp/internal/repo"
)

func TestRunRemind_SendsDueWithinWindow(t *testing.T) {
	cfg := testConfig(t)
	now := time.Now().UTC().Truncate(time.Second)

	db, closeDB, err := openStore(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	spec := domain.ChainSpec{
		Type:       domain.ChainHatim,
		Title:      "Cuma hatmi",
		OwnerID:    "u1",
		StartDate:  now.Add(-time.Hour),
		EndDate:    now.Add(24*time.Hour - 2*time.Minute),
		TotalParts: 30,
	}
	c, err := repo.CreateChain(context.Background(), db, domain.NewChain(spec, now))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	closeDB()

	out, logs := new(bytes.Buffer), new(bytes.Buffer)
	err = runRemind(context.Background(), out, logs, cfg, 5*time.Minute, func() time.Time { return now })
	if err != nil {
		t.Fatalf("remind: %v", err)
	}
	if !strings.Contains(out.String(), "reminders sent: 1,") {
		t.Errorf("output: %s", out.String())
	}
	if !strings.Contains(logs.String(), "chain_1d_"+c.ID) {
		t.Errorf("expected the 1d reminder in logs, got: %s", logs.String())
	}
	if strings.Contains(logs.String(), "chain_3h_") {
		t.Errorf("3h reminder is not due yet: %s", logs.String())
	}
}

func TestRunRemind_OutsideWindow(t *testing.T) {
	cfg := testConfig(t)
	now := time.Now().UTC().Truncate(time.Second)

	db, closeDB, err := openStore(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	spec := domain.ChainSpec{
		Type:       domain.ChainHatim,
		Title:      "Eski hatim",
		OwnerID:    "u1",
		EndDate:    now.Add(23 * time.Hour),
		TotalParts: 30,
	}
	if _, err := repo.CreateChain(context.Background(), db, domain.NewChain(spec, now)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	closeDB()

	out := new(bytes.Buffer)
	if err := runRemind(context.Background(), out, new(bytes.Buffer), cfg, 5*time.Minute, func() time.Time { return now }); err != nil {
		t.Fatalf("remind: %v", err)
	}
	if !strings.Contains(out.String(), "reminders sent: 0,") {
		t.Errorf("1d trigger passed an hour ago, nothing should be sent: %s", out.String())
	}
}

func TestRunRemind_Errors(t *testing.T) {
	cfg := testConfig(t)
	if err := runRemind(context.Background(), new(bytes.Buffer), new(bytes.Buffer), cfg, 0, time.Now); err == nil {
		t.Error("expected error for zero --since")
	}

	cfg.Reminder.Sender = "pigeon"
	err := runRemind(context.Background(), new(bytes.Buffer), new(bytes.Buffer), cfg, time.Minute, time.Now)
	if err == nil || !strings.Contains(err.Error(), "pigeon") {
		t.Errorf("expected unknown sender error, got %v", err)
	}
}

func TestScheduler_PlansNewestChainBeyondPageSize(t *testing.T) {
	cfg := testConfig(t)
	cfg.Chain.PageSize = 2
	now := time.Now().UTC()

	db, closeDB, err := openStore(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeDB()

	sched, err := newScheduler(db, cfg)
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}
	svc := httpapi.NewChainService(db, cfg, sched)

	var newest *domain.Chain
	for i := 0; i < 3; i++ {
		newest, err = svc.Create(context.Background(), domain.ChainSpec{
			Type:       domain.ChainSalavat,
			Title:      "Salavat",
			OwnerID:    "u1",
			EndDate:    now.Add(48 * time.Hour),
			TotalParts: 10,
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	res, err := sched.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res.Dropped != 0 {
		t.Fatalf("sweep dropped reminders: %+v", res)
	}
	ids := map[string]bool{}
	for _, r := range sched.Pending() {
		ids[r.ID] = true
	}
	if len(ids) != 6 || !ids["chain_1d_"+newest.ID] || !ids["chain_3h_"+newest.ID] {
		t.Fatalf("pending %v", ids)
	}
}
