package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/questforge/progression_api/model"
	"github.com/questforge/progression_api/shared"
)

func TestDeletePlayerCascades(t *testing.T) {
	svc, ds := newTestProgression(t)
	player := mustCreatePlayer(t, svc)
	boost := mustCreateBoost(t, ds, model.BoostTypeDoublePoints)
	level := mustCreateLevel(t, ds, "Old Mill", 1)
	prize := mustCreatePrize(t, ds, "Millstone")
	mustAttachPrize(t, ds, level.ID, prize.ID, time.Now().UTC())

	if _, err := svc.AddBoost(player.ID, boost.ID, 2); err != nil {
		t.Fatalf("boost grant failed: %v", err)
	}
	if _, err := svc.CompleteLevel(player.ID, level.ID, 80, true); err != nil {
		t.Fatalf("complete level failed: %v", err)
	}

	if err := ds.DeletePlayer(player.ID); err != nil {
		t.Fatalf("delete player failed: %v", err)
	}

	var boostRows, levelRows, prizeRows int64
	ds.Db().Model(&model.PlayerBoost{}).Where("player_id = ?", player.ID).Count(&boostRows)
	ds.Db().Model(&model.PlayerLevel{}).Where("player_id = ?", player.ID).Count(&levelRows)
	ds.Db().Model(&model.PlayerPrize{}).Where("player_id = ?", player.ID).Count(&prizeRows)
	if boostRows != 0 || levelRows != 0 || prizeRows != 0 {
		t.Fatalf("expected cascade to remove ledger rows, got boosts=%d levels=%d prizes=%d",
			boostRows, levelRows, prizeRows)
	}

	// Catalog is untouched.
	if _, err := ds.GetBoost(boost.ID); err != nil {
		t.Fatalf("boost catalog entry lost: %v", err)
	}
	if _, err := ds.GetLevel(level.ID); err != nil {
		t.Fatalf("level catalog entry lost: %v", err)
	}
}

func TestDeletePlayerNotFound(t *testing.T) {
	ds := newTestDbService(t)

	err := ds.DeletePlayer("no-such-player")
	if !shared.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDuplicateBoostTypeRejected(t *testing.T) {
	ds := newTestDbService(t)
	mustCreateBoost(t, ds, model.BoostTypeSpeed)

	id, _ := uuid.NewV7()
	err := ds.CreateBoost(&model.Boost{
		ID:          id.String(),
		Type:        model.BoostTypeSpeed,
		Description: model.BoostTypeDescriptions[model.BoostTypeSpeed],
		CreatedAt:   time.Now().UTC(),
	})
	if !shared.IsConstraintViolation(err) {
		t.Fatalf("expected constraint violation for duplicate type, got %v", err)
	}
}

func TestAddPlayerBoostAmountRejectsUnknownPlayer(t *testing.T) {
	ds := newTestDbService(t)
	boost := mustCreateBoost(t, ds, model.BoostTypeShield)

	_, err := ds.AddPlayerBoostAmount("no-such-player", boost.ID, 1)
	if !shared.IsNotFound(err) {
		t.Fatalf("expected not found error from FK enforcement, got %v", err)
	}
}

func TestUpsertPlayerLevelKeepsSingleRow(t *testing.T) {
	svc, ds := newTestProgression(t)
	player := mustCreatePlayer(t, svc)
	level := mustCreateLevel(t, ds, "Canyon Run", 2)

	now := time.Now().UTC()
	for i, score := range []int{10, 20, 30} {
		attempt := &model.PlayerLevel{
			PlayerID:  player.ID,
			LevelID:   level.ID,
			Score:     score,
			CreatedAt: now,
			UpdatedAt: now.Add(time.Duration(i) * time.Second),
		}
		if err := ds.UpsertPlayerLevel(attempt); err != nil {
			t.Fatalf("upsert %d failed: %v", i, err)
		}
	}

	var count int64
	ds.Db().Model(&model.PlayerLevel{}).
		Where("player_id = ? AND level_id = ?", player.ID, level.ID).
		Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 attempt row, got %d", count)
	}

	pl, err := ds.GetPlayerLevel(player.ID, level.ID)
	if err != nil {
		t.Fatalf("failed to read attempt row: %v", err)
	}
	if pl.Score != 30 {
		t.Fatalf("expected latest score 30, got %d", pl.Score)
	}
}

func TestCreatePlayerPrizeIfAbsent(t *testing.T) {
	svc, ds := newTestProgression(t)
	player := mustCreatePlayer(t, svc)
	prize := mustCreatePrize(t, ds, "Emerald")

	now := time.Now().UTC()
	created, err := ds.CreatePlayerPrizeIfAbsent(player.ID, prize.ID, now)
	if err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if !created {
		t.Fatal("expected first insert to report a new row")
	}

	created, err = ds.CreatePlayerPrizeIfAbsent(player.ID, prize.ID, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("second insert failed: %v", err)
	}
	if created {
		t.Fatal("expected second insert to be a no-op")
	}

	prizes, err := ds.GetPlayerPrizes(player.ID)
	if err != nil {
		t.Fatalf("failed to list prizes: %v", err)
	}
	if len(prizes) != 1 {
		t.Fatalf("expected 1 prize row, got %d", len(prizes))
	}
	if !prizes[0].ReceivedAt.Equal(now) {
		t.Fatalf("received_at must keep the original grant time, got %v", prizes[0].ReceivedAt)
	}
}

func TestCreateLevelPrizeReattachNoOp(t *testing.T) {
	ds := newTestDbService(t)
	level := mustCreateLevel(t, ds, "Ridge", 3)
	prize := mustCreatePrize(t, ds, "Compass")

	now := time.Now().UTC()
	mustAttachPrize(t, ds, level.ID, prize.ID, now)
	mustAttachPrize(t, ds, level.ID, prize.ID, now.Add(time.Hour))

	associations, err := ds.GetLevelPrizes(level.ID)
	if err != nil {
		t.Fatalf("failed to list associations: %v", err)
	}
	if len(associations) != 1 {
		t.Fatalf("expected 1 association, got %d", len(associations))
	}
}
