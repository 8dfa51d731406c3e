package service

import (
	"context"
	"testing"

	"portal/internal/apperr"
	"portal/internal/model"
	"portal/pkg/pagination"

	"github.com/google/uuid"
)

func validContact() ContactRequest {
	return ContactRequest{Subject: "Quote", FullName: "Jane Doe", Email: "jane@example.com", Message: "Need 500 boxes"}
}

func TestContactSubmit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.contacts.Submit(ctx, validContact())
	if err != nil {
		t.Fatal(err)
	}
	list, _ := env.contacts.List(ctx, ContactListQuery{Params: pagination.Params{Limit: 50}})
	if list.Total != 1 || list.Submissions[0].ID != id || list.Submissions[0].Status != model.ContactStatusNew {
		t.Errorf("inbox %+v", list)
	}

	missing := validContact()
	missing.Message = "  "
	_, err = env.contacts.Submit(ctx, missing)
	wantKind(t, err, apperr.KindValidation)

	for _, email := range []string{"jane", "jane@example", "jane doe@example.com"} {
		bad := validContact()
		bad.Email = email
		_, err = env.contacts.Submit(ctx, bad)
		wantKind(t, err, apperr.KindValidation)
	}
}

func TestContactStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id, _ := env.contacts.Submit(ctx, validContact())
	env.contacts.Submit(ctx, validContact())

	if err := env.contacts.UpdateStatus(ctx, env.admin, id, model.ContactStatusReplied); err != nil {
		t.Fatal(err)
	}
	list, _ := env.contacts.List(ctx, ContactListQuery{Status: model.ContactStatusReplied, Params: pagination.Params{Limit: 50}})
	if list.Total != 1 || list.Submissions[0].ID != id {
		t.Errorf("replied filter %+v", list)
	}

	err := env.contacts.UpdateStatus(ctx, env.admin, id, "spam")
	wantKind(t, err, apperr.KindValidation)
	// The allow-list is checked before the lookup.
	err = env.contacts.UpdateStatus(ctx, env.admin, uuid.New(), "spam")
	wantKind(t, err, apperr.KindValidation)
	err = env.contacts.UpdateStatus(ctx, env.admin, uuid.New(), model.ContactStatusRead)
	wantKind(t, err, apperr.KindNotFound)

	_, err = env.contacts.List(ctx, ContactListQuery{Status: "spam"})
	wantKind(t, err, apperr.KindValidation)
}

func TestContactDeleteIsPermanent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id, _ := env.contacts.Submit(ctx, validContact())

	if err := env.contacts.Delete(ctx, env.admin, id); err != nil {
		t.Fatal(err)
	}
	list, _ := env.contacts.List(ctx, ContactListQuery{Params: pagination.Params{Limit: 50}})
	if list.Total != 0 {
		t.Errorf("deleted submission still listed")
	}
	wantKind(t, env.contacts.Delete(ctx, env.admin, id), apperr.KindNotFound)
	wantKind(t, env.contacts.UpdateStatus(ctx, env.admin, id, model.ContactStatusRead), apperr.KindNotFound)
}
