package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/questforge/progression_api/model"
	"github.com/questforge/progression_api/shared"
)

func newTestDbService(t *testing.T) *DbService {
	t.Helper()

	ds := &DbService{
		driver:   "sqlite",
		database: filepath.Join(t.TempDir(), "test.db"),
	}
	if err := ds.Start(); err != nil {
		t.Fatalf("failed to start db service: %v", err)
	}
	return ds
}

func newTestProgression(t *testing.T) (*ProgressionService, *DbService) {
	t.Helper()

	ds := newTestDbService(t)
	return &ProgressionService{dbSvc: ds}, ds
}

func mustCreatePlayer(t *testing.T, svc *ProgressionService) *model.Player {
	t.Helper()

	player, err := svc.CreatePlayer()
	if err != nil {
		t.Fatalf("failed to create player: %v", err)
	}
	return player
}

func mustCreateBoost(t *testing.T, ds *DbService, boostType model.BoostType) *model.Boost {
	t.Helper()

	id, _ := uuid.NewV7()
	boost := &model.Boost{
		ID:          id.String(),
		Type:        boostType,
		Description: model.BoostTypeDescriptions[boostType],
		CreatedAt:   time.Now().UTC(),
	}
	if err := ds.CreateBoost(boost); err != nil {
		t.Fatalf("failed to create boost: %v", err)
	}
	return boost
}

func mustCreateLevel(t *testing.T, ds *DbService, title string, order int) *model.Level {
	t.Helper()

	id, _ := uuid.NewV7()
	level := &model.Level{
		ID:        id.String(),
		Title:     title,
		Order:     order,
		CreatedAt: time.Now().UTC(),
	}
	if err := ds.CreateLevel(level); err != nil {
		t.Fatalf("failed to create level: %v", err)
	}
	return level
}

func mustCreatePrize(t *testing.T, ds *DbService, title string) *model.Prize {
	t.Helper()

	id, _ := uuid.NewV7()
	prize := &model.Prize{
		ID:        id.String(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	if err := ds.CreatePrize(prize); err != nil {
		t.Fatalf("failed to create prize: %v", err)
	}
	return prize
}

func mustAttachPrize(t *testing.T, ds *DbService, levelID, prizeID string, at time.Time) {
	t.Helper()

	err := ds.CreateLevelPrize(&model.LevelPrize{
		LevelID:   levelID,
		PrizeID:   prizeID,
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("failed to attach prize: %v", err)
	}
}

func TestLoginFirstVisitCreditsBonus(t *testing.T) {
	svc, _ := newTestProgression(t)
	player := mustCreatePlayer(t, svc)

	updated, err := svc.Login(player.ID)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if updated.Points != shared.DailyLoginBonus {
		t.Fatalf("expected %d points after first login, got %d", shared.DailyLoginBonus, updated.Points)
	}
	if updated.FirstLogin == nil {
		t.Fatal("expected first_login to be set")
	}
	if updated.LastLogin == nil {
		t.Fatal("expected last_login to be set")
	}
}

func TestLoginSameDayCreditsOnce(t *testing.T) {
	svc, _ := newTestProgression(t)
	player := mustCreatePlayer(t, svc)

	if _, err := svc.Login(player.ID); err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	updated, err := svc.Login(player.ID)
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}

	if updated.Points != shared.DailyLoginBonus {
		t.Fatalf("same-day login must not credit again: expected %d points, got %d",
			shared.DailyLoginBonus, updated.Points)
	}
}

func TestLoginNextDayCreditsAgain(t *testing.T) {
	svc, ds := newTestProgression(t)
	player := mustCreatePlayer(t, svc)

	if _, err := svc.Login(player.ID); err != nil {
		t.Fatalf("first login failed: %v", err)
	}

	yesterday := time.Now().UTC().Add(-26 * time.Hour)
	err := ds.Db().Model(&model.Player{}).
		Where("id = ?", player.ID).
		Update("last_login", yesterday).Error
	if err != nil {
		t.Fatalf("failed to backdate last_login: %v", err)
	}

	updated, err := svc.Login(player.ID)
	if err != nil {
		t.Fatalf("next-day login failed: %v", err)
	}
	if updated.Points != 2*shared.DailyLoginBonus {
		t.Fatalf("expected %d points after next-day login, got %d",
			2*shared.DailyLoginBonus, updated.Points)
	}

	firstLogin, err := ds.GetPlayer(player.ID)
	if err != nil {
		t.Fatalf("failed to reload player: %v", err)
	}
	if firstLogin.FirstLogin == nil {
		t.Fatal("first_login must survive later logins")
	}
}

func TestLoginUnknownPlayer(t *testing.T) {
	svc, _ := newTestProgression(t)

	_, err := svc.Login("no-such-player")
	if !shared.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestAddBoostAccumulates(t *testing.T) {
	svc, ds := newTestProgression(t)
	player := mustCreatePlayer(t, svc)
	boost := mustCreateBoost(t, ds, model.BoostTypeSpeed)

	if _, err := svc.AddBoost(player.ID, boost.ID, 2); err != nil {
		t.Fatalf("first grant failed: %v", err)
	}
	pb, err := svc.AddBoost(player.ID, boost.ID, 3)
	if err != nil {
		t.Fatalf("second grant failed: %v", err)
	}

	if pb.Amount != 5 {
		t.Fatalf("expected accumulated amount 5, got %d", pb.Amount)
	}

	rows, err := ds.GetPlayerBoosts(player.ID)
	if err != nil {
		t.Fatalf("failed to list player boosts: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single accumulated row, got %d", len(rows))
	}
}

func TestAddBoostZeroAmount(t *testing.T) {
	svc, ds := newTestProgression(t)
	player := mustCreatePlayer(t, svc)
	boost := mustCreateBoost(t, ds, model.BoostTypeDoublePoints)

	pb, err := svc.AddBoost(player.ID, boost.ID, 0)
	if err != nil {
		t.Fatalf("zero-amount grant failed: %v", err)
	}
	if pb.Amount != 0 {
		t.Fatalf("expected amount 0 after zero-amount grant, got %d", pb.Amount)
	}

	pb, err = svc.AddBoost(player.ID, boost.ID, 0)
	if err != nil {
		t.Fatalf("repeated zero-amount grant failed: %v", err)
	}
	if pb.Amount != 0 {
		t.Fatalf("zero-amount grants must not accumulate, got %d", pb.Amount)
	}

	pb, err = svc.AddBoost(player.ID, boost.ID, 4)
	if err != nil {
		t.Fatalf("follow-up grant failed: %v", err)
	}
	if pb.Amount != 4 {
		t.Fatalf("expected amount 4 after 0+0+4, got %d", pb.Amount)
	}
}

func TestAddBoostNegativeAmount(t *testing.T) {
	svc, ds := newTestProgression(t)
	player := mustCreatePlayer(t, svc)
	boost := mustCreateBoost(t, ds, model.BoostTypeShield)

	_, err := svc.AddBoost(player.ID, boost.ID, -1)
	if !shared.IsConstraintViolation(err) {
		t.Fatalf("expected constraint violation, got %v", err)
	}
}

func TestAddBoostUnknownBoost(t *testing.T) {
	svc, _ := newTestProgression(t)
	player := mustCreatePlayer(t, svc)

	_, err := svc.AddBoost(player.ID, "no-such-boost", 1)
	if !shared.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestSubmitLevelResultScoreOverwritesCompletionSticks(t *testing.T) {
	svc, ds := newTestProgression(t)
	player := mustCreatePlayer(t, svc)
	level := mustCreateLevel(t, ds, "Cave of Trials", 1)

	pl, err := svc.SubmitLevelResult(player.ID, level.ID, 50, true)
	if err != nil {
		t.Fatalf("first attempt failed: %v", err)
	}
	if pl.Completed == nil {
		t.Fatal("expected completion timestamp after winning attempt")
	}

	pl, err = svc.SubmitLevelResult(player.ID, level.ID, 70, false)
	if err != nil {
		t.Fatalf("second attempt failed: %v", err)
	}
	if pl.Score != 70 {
		t.Fatalf("expected score overwritten to 70, got %d", pl.Score)
	}
	if pl.Completed == nil {
		t.Fatal("a beaten level must stay beaten across later failed attempts")
	}

	rows, err := ds.GetPlayerLevels(player.ID)
	if err != nil {
		t.Fatalf("failed to list player levels: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single attempt row, got %d", len(rows))
	}
}

func TestGrantLevelPrizesIdempotent(t *testing.T) {
	svc, ds := newTestProgression(t)
	player := mustCreatePlayer(t, svc)
	level := mustCreateLevel(t, ds, "Sunken City", 2)
	first := mustCreatePrize(t, ds, "Golden Chest")
	second := mustCreatePrize(t, ds, "Silver Key")
	now := time.Now().UTC()
	mustAttachPrize(t, ds, level.ID, first.ID, now)
	mustAttachPrize(t, ds, level.ID, second.ID, now.Add(time.Second))

	if _, err := svc.SubmitLevelResult(player.ID, level.ID, 90, true); err != nil {
		t.Fatalf("attempt failed: %v", err)
	}

	granted, err := svc.GrantLevelPrizes(player.ID, level.ID)
	if err != nil {
		t.Fatalf("first grant pass failed: %v", err)
	}
	if granted != 2 {
		t.Fatalf("expected 2 prizes granted, got %d", granted)
	}

	granted, err = svc.GrantLevelPrizes(player.ID, level.ID)
	if err != nil {
		t.Fatalf("second grant pass failed: %v", err)
	}
	if granted != 0 {
		t.Fatalf("repeat grant pass must issue nothing, got %d", granted)
	}

	prizes, err := ds.GetPlayerPrizes(player.ID)
	if err != nil {
		t.Fatalf("failed to list player prizes: %v", err)
	}
	if len(prizes) != 2 {
		t.Fatalf("expected 2 prize rows, got %d", len(prizes))
	}
}

func TestGrantLevelPrizesRequiresCompletion(t *testing.T) {
	svc, ds := newTestProgression(t)
	player := mustCreatePlayer(t, svc)
	level := mustCreateLevel(t, ds, "Frozen Pass", 3)
	prize := mustCreatePrize(t, ds, "Ice Crown")
	mustAttachPrize(t, ds, level.ID, prize.ID, time.Now().UTC())

	// Never attempted.
	granted, err := svc.GrantLevelPrizes(player.ID, level.ID)
	if err != nil {
		t.Fatalf("grant on unattempted level failed: %v", err)
	}
	if granted != 0 {
		t.Fatalf("unattempted level must grant nothing, got %d", granted)
	}

	// Attempted but not completed.
	if _, err := svc.SubmitLevelResult(player.ID, level.ID, 40, false); err != nil {
		t.Fatalf("attempt failed: %v", err)
	}
	granted, err = svc.GrantLevelPrizes(player.ID, level.ID)
	if err != nil {
		t.Fatalf("grant on failed attempt errored: %v", err)
	}
	if granted != 0 {
		t.Fatalf("incomplete level must grant nothing, got %d", granted)
	}
}

func TestSubmitLevelResultNegativeScore(t *testing.T) {
	svc, ds := newTestProgression(t)
	player := mustCreatePlayer(t, svc)
	level := mustCreateLevel(t, ds, "Dunes", 4)

	_, err := svc.SubmitLevelResult(player.ID, level.ID, -5, false)
	if !shared.IsConstraintViolation(err) {
		t.Fatalf("expected constraint violation, got %v", err)
	}
}

func TestCompleteLevelFullFlow(t *testing.T) {
	svc, ds := newTestProgression(t)
	player := mustCreatePlayer(t, svc)
	speed := mustCreateBoost(t, ds, model.BoostTypeSpeed)
	level := mustCreateLevel(t, ds, "Final Gate", 5)
	prizeX := mustCreatePrize(t, ds, "Prize X")
	prizeY := mustCreatePrize(t, ds, "Prize Y")
	now := time.Now().UTC()
	mustAttachPrize(t, ds, level.ID, prizeX.ID, now)
	mustAttachPrize(t, ds, level.ID, prizeY.ID, now.Add(time.Second))

	if _, err := svc.Login(player.ID); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := svc.AddBoost(player.ID, speed.ID, 1); err != nil {
		t.Fatalf("boost grant failed: %v", err)
	}

	resp, err := svc.CompleteLevel(player.ID, level.ID, 120, true)
	if err != nil {
		t.Fatalf("complete level failed: %v", err)
	}
	if resp.Granted != 2 {
		t.Fatalf("expected 2 prizes granted, got %d", resp.Granted)
	}
	if resp.Completed == nil {
		t.Fatal("expected completion timestamp in response")
	}

	// Running the same completion again must change nothing.
	resp, err = svc.CompleteLevel(player.ID, level.ID, 120, true)
	if err != nil {
		t.Fatalf("repeat completion failed: %v", err)
	}
	if resp.Granted != 0 {
		t.Fatalf("repeat completion must grant nothing, got %d", resp.Granted)
	}

	progress, err := svc.GetPlayerProgress(player.ID)
	if err != nil {
		t.Fatalf("progress projection failed: %v", err)
	}
	if progress.Points != shared.DailyLoginBonus {
		t.Fatalf("expected %d points in projection, got %d", shared.DailyLoginBonus, progress.Points)
	}
	if len(progress.Boosts) != 1 || progress.Boosts[0].Amount != 1 {
		t.Fatalf("unexpected boost projection: %+v", progress.Boosts)
	}
	if len(progress.Levels) != 1 || progress.Levels[0].Completed == nil {
		t.Fatalf("unexpected level projection: %+v", progress.Levels)
	}
	if len(progress.Prizes) != 2 {
		t.Fatalf("expected 2 prizes in projection, got %d", len(progress.Prizes))
	}
}

func TestEnsureBoostCatalogIdempotent(t *testing.T) {
	ds := newTestDbService(t)
	svc := &CatalogService{dbSvc: ds}

	if err := svc.EnsureBoostCatalog(); err != nil {
		t.Fatalf("first seeding pass failed: %v", err)
	}
	if err := svc.EnsureBoostCatalog(); err != nil {
		t.Fatalf("second seeding pass failed: %v", err)
	}

	boosts, err := ds.ListBoosts()
	if err != nil {
		t.Fatalf("failed to list boosts: %v", err)
	}
	if len(boosts) != len(model.AllBoostTypes()) {
		t.Fatalf("expected %d catalog entries, got %d", len(model.AllBoostTypes()), len(boosts))
	}
	for _, boost := range boosts {
		if boost.Description != model.BoostTypeDescriptions[boost.Type] {
			t.Fatalf("boost %s has description %q, want %q",
				boost.Type, boost.Description, model.BoostTypeDescriptions[boost.Type])
		}
	}
}
