package service

import (
	"context"
	"testing"
	"time"

	"portal/internal/apperr"
	"portal/internal/model"
	"portal/internal/rbac"
	"portal/pkg/pagination"

	"github.com/google/uuid"
)

func TestBulletinListProjection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hr := env.createUser(t, "hr@x.com", rbac.RoleHR)

	_, err := env.bulletins.Create(ctx, hr, BulletinInput{
		Type: model.BulletinTypeEvent, Title: "Expo", Description: "Full agenda", ShortDescription: "Expo",
		EventDate: "2026-03-15", Location: "Hall A",
	})
	if err != nil {
		t.Fatal(err)
	}

	anon, err := env.bulletins.List(ctx, nil, BulletinListQuery{Params: pagination.Params{Limit: 20}})
	if err != nil {
		t.Fatal(err)
	}
	if anon.Authenticated || len(anon.Bulletins) != 1 {
		t.Fatalf("anonymous list %+v", anon)
	}
	row := asJSON(t, anon.Bulletins[0])
	if _, ok := row["description"]; ok {
		t.Error("anonymous row exposes description")
	}
	if row["created_by_name"] != "User hr@x.com" {
		t.Errorf("created_by_name = %v", row["created_by_name"])
	}

	full, _ := env.bulletins.List(ctx, principal(rbac.RoleCustomer), BulletinListQuery{Params: pagination.Params{Limit: 20}})
	row = asJSON(t, full.Bulletins[0])
	if row["description"] != "Full agenda" {
		t.Errorf("description = %v", row["description"])
	}
}

func TestBulletinGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hr := env.createUser(t, "hr@x.com", rbac.RoleHR)
	id, _ := env.bulletins.Create(ctx, hr, BulletinInput{Type: model.BulletinTypeHiring, Title: "Driver", Description: "Night shift"})

	_, err := env.bulletins.Get(ctx, nil, id)
	wantKind(t, err, apperr.KindUnauthenticated)

	view, err := env.bulletins.Get(ctx, principal(rbac.RoleUser), id)
	if err != nil {
		t.Fatal(err)
	}
	if view.Description != "Night shift" || view.Status != model.BulletinStatusPublished {
		t.Errorf("view %+v", view)
	}

	_, err = env.bulletins.Get(ctx, principal(rbac.RoleUser), uuid.New())
	wantKind(t, err, apperr.KindNotFound)
}

func TestBulletinValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := principal(rbac.RoleHR)

	cases := []BulletinInput{
		{Title: "x", Description: "x"},
		{Type: model.BulletinTypeEvent, Description: "x"},
		{Type: model.BulletinTypeEvent, Title: "x"},
		{Type: "party", Title: "x", Description: "x"},
		{Type: model.BulletinTypeEvent, Title: "x", Description: "x", Status: "pending"},
		{Type: model.BulletinTypeEvent, Title: "x", Description: "x", EventDate: "15/03/2026"},
	}
	for _, in := range cases {
		_, err := env.bulletins.Create(ctx, actor, in)
		wantKind(t, err, apperr.KindValidation)
	}

	_, err := env.bulletins.List(ctx, nil, BulletinListQuery{Type: "party"})
	wantKind(t, err, apperr.KindValidation)
}

func TestBulletinEventDateFormats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := principal(rbac.RoleHR)

	for _, raw := range []string{"2026-03-15", "2026-03-15T09:30:00Z"} {
		id, err := env.bulletins.Create(ctx, actor, BulletinInput{
			Type: model.BulletinTypeEvent, Title: "x", Description: "x", EventDate: raw,
		})
		if err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		b, _ := env.store.RawBulletin(id)
		if b.EventDate == nil || b.EventDate.Format(time.DateOnly) != "2026-03-15" {
			t.Errorf("%s: event date %v", raw, b.EventDate)
		}
	}
}

func TestBulletinStatusVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hr := principal(rbac.RoleHR)

	for _, status := range model.BulletinStatuses {
		if _, err := env.bulletins.Create(ctx, hr, BulletinInput{
			Type: model.BulletinTypeAnnouncement, Title: status, Description: "x", Status: status,
		}); err != nil {
			t.Fatal(err)
		}
	}

	list, _ := env.bulletins.List(ctx, nil, BulletinListQuery{Status: "all", Params: pagination.Params{Limit: 20}})
	if list.Total != 1 {
		t.Errorf("anonymous total = %d, want only published", list.Total)
	}
	list, _ = env.bulletins.List(ctx, principal(rbac.RoleSales), BulletinListQuery{Status: model.BulletinStatusDraft, Params: pagination.Params{Limit: 20}})
	if list.Total != 1 || asJSON(t, list.Bulletins[0])["status"] != model.BulletinStatusPublished {
		t.Errorf("non-manager should only see published bulletins")
	}
	list, _ = env.bulletins.List(ctx, hr, BulletinListQuery{Status: "all", Params: pagination.Params{Limit: 20}})
	if list.Total != 3 {
		t.Errorf("manager total = %d", list.Total)
	}
	list, _ = env.bulletins.List(ctx, hr, BulletinListQuery{Status: model.BulletinStatusDraft, Params: pagination.Params{Limit: 20}})
	if list.Total != 1 {
		t.Errorf("manager draft total = %d", list.Total)
	}
}

func TestBulletinUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hr := principal(rbac.RoleHR)
	id, _ := env.bulletins.Create(ctx, hr, BulletinInput{Type: model.BulletinTypeEvent, Title: "Expo", Description: "x"})

	err := env.bulletins.Update(ctx, env.admin, id, BulletinInput{
		Type: model.BulletinTypeEvent, Title: "Expo 2026", Description: "y", Status: model.BulletinStatusArchived,
	})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := env.store.RawBulletin(id)
	if b.Title != "Expo 2026" || b.Status != model.BulletinStatusArchived {
		t.Errorf("updated bulletin %+v", b)
	}

	if err := env.bulletins.Delete(ctx, env.admin, id); err != nil {
		t.Fatal(err)
	}
	if b, ok := env.store.RawBulletin(id); !ok || !b.DeletedAt.Valid {
		t.Error("row should remain with deleted_at set")
	}
	_, err = env.bulletins.Get(ctx, hr, id)
	wantKind(t, err, apperr.KindNotFound)
	wantKind(t, env.bulletins.Delete(ctx, env.admin, id), apperr.KindNotFound)
	err = env.bulletins.Update(ctx, env.admin, id, BulletinInput{Type: model.BulletinTypeEvent, Title: "x", Description: "x"})
	wantKind(t, err, apperr.KindNotFound)
}
