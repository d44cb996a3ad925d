package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"dhamen.org/internal/claim"
)

var claimCols = []string{
	"id", "type", "contract_id", "provider_id", "adherent_id", "insurer_id",
	"total_amount", "covered_amount", "copay_amount", "fraud_score",
	"status", "notes", "created_at", "validated_at", "updated_at",
}

func TestClaimsGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("select (.+) from claims where id = \\$1").
		WithArgs("clm-1").
		WillReturnRows(sqlmock.NewRows(claimCols).AddRow(
			"clm-1", "pharmacy", "ctr-1", "prv-1", "adh-1", "ins-1",
			12000, 9600, 2400, 0.12,
			"eligible", nil, now, nil, now,
		))

	claims := New(db).Claims()
	rec, err := claims.Get(context.Background(), "clm-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Status != claim.StatusEligible || rec.Type != claim.TypePharmacy {
		t.Fatalf("unexpected claim: %+v", rec)
	}
	if rec.CoveredAmount != 9600 || rec.CopayAmount != 2400 {
		t.Fatalf("amounts mishandled: %+v", rec)
	}
	if !rec.ValidatedAt.IsZero() {
		t.Fatalf("null validated_at should scan as zero time")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestClaimsGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select (.+) from claims where id = \\$1").
		WithArgs("clm-missing").
		WillReturnRows(sqlmock.NewRows(claimCols))

	claims := New(db).Claims()
	if _, err := claims.Get(context.Background(), "clm-missing"); !errors.Is(err, claim.ErrNotFound) {
		t.Fatalf("expected claim.ErrNotFound, got %v", err)
	}
}

func TestClaimsUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec("update claims").
		WithArgs("clm-1", "eligible", "approved", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	claims := New(db).Claims()
	err = claims.UpdateStatus(context.Background(), "clm-1", claim.StatusEligible, claim.StatusApproved, at)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestClaimsUpdateStatusConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Now().UTC()
	// Guarded update matches nothing: the claim exists but its status moved.
	mock.ExpectExec("update claims").
		WithArgs("clm-1", "eligible", "approved", at).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select exists").
		WithArgs("clm-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	claims := New(db).Claims()
	err = claims.UpdateStatus(context.Background(), "clm-1", claim.StatusEligible, claim.StatusApproved, at)
	if !errors.Is(err, claim.ErrStatusConflict) {
		t.Fatalf("expected claim.ErrStatusConflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestClaimsUpdateStatusGone(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec("update claims").
		WithArgs("clm-gone", "eligible", "approved", at).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select exists").
		WithArgs("clm-gone").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	claims := New(db).Claims()
	err = claims.UpdateStatus(context.Background(), "clm-gone", claim.StatusEligible, claim.StatusApproved, at)
	if !errors.Is(err, claim.ErrNotFound) {
		t.Fatalf("expected claim.ErrNotFound, got %v", err)
	}
}
