package repos_test

import (
	"errors"
	"testing"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/nnamdiindu/cara-store/internal/domain"
	"github.com/nnamdiindu/cara-store/internal/repos"
)

func TestCollectionCRUD(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	r := repos.NewCollectionRepo(db)

	id, err := r.Create(domain.Collection{
		BrandName:   "Nomad",
		Description: "Waxed canvas duffel",
		Filename:    "nomad.jpg",
		Amount:      210.50,
		Data:        []byte("jpegbytes"),
		Mimetype:    "image/jpeg",
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := r.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.BrandName != "Nomad" || got.Amount != 210.50 || string(got.Data) != "jpegbytes" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	// partial update keeps the image
	got.Description = "Waxed canvas duffel, large"
	got.Data = nil
	if err := r.Update(got, false); err != nil {
		t.Fatal(err)
	}
	after, err := r.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if string(after.Data) != "jpegbytes" {
		t.Fatal("text-only update clobbered the image")
	}
	if after.Description != "Waxed canvas duffel, large" {
		t.Fatalf("description not updated: %q", after.Description)
	}

	if err := r.Delete(id); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get(id); !repos.IsNotFound(err) {
		t.Fatalf("want no rows after delete, got %v", err)
	}
}

func TestCollectionListInsertionOrder(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	r := repos.NewCollectionRepo(db)

	before, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	for _, brand := range []string{"Zeta", "Alpha"} {
		if _, err := r.Create(domain.Collection{
			BrandName: brand, Description: "d", Filename: "f.png",
			Amount: 1, Data: []byte{1}, Mimetype: "image/png",
		}); err != nil {
			t.Fatal(err)
		}
	}
	after, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(before)+2 {
		t.Fatalf("want %d rows, got %d", len(before)+2, len(after))
	}
	// insertion order, not alphabetical
	if after[len(after)-2].BrandName != "Zeta" || after[len(after)-1].BrandName != "Alpha" {
		t.Fatalf("list not in insertion order: %+v", after)
	}
}

func TestCollectionDeleteRestrictedByOrders(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	colRepo := repos.NewCollectionRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	colID, err := colRepo.Create(domain.Collection{
		BrandName: "Held", Description: "d", Filename: "f.png",
		Amount: 5, Data: []byte{1}, Mimetype: "image/png",
	})
	if err != nil {
		t.Fatal(err)
	}
	var userID int64
	if err := db.Get(&userID, `SELECT id FROM users LIMIT 1`); err != nil {
		t.Fatal(err)
	}
	if _, err := orderRepo.Create(colID, "buyer@example.com", 5, "ref-held", userID); err != nil {
		t.Fatal(err)
	}

	err = colRepo.Delete(colID)
	if !errors.Is(err, repos.ErrCollectionInUse) {
		t.Fatalf("want ErrCollectionInUse, got %v", err)
	}
	if _, err := colRepo.Get(colID); err != nil {
		t.Fatalf("restricted delete removed the row: %v", err)
	}
}

func TestOrderReferenceUnique(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	orderRepo := repos.NewOrderRepo(db)

	var userID int64
	if err := db.Get(&userID, `SELECT id FROM users LIMIT 1`); err != nil {
		t.Fatal(err)
	}
	var colID int64
	if err := db.Get(&colID, `SELECT id FROM collections LIMIT 1`); err != nil {
		t.Fatal(err)
	}

	if _, err := orderRepo.Create(colID, "a@example.com", 1, "ref-dup", userID); err != nil {
		t.Fatal(err)
	}
	if _, err := orderRepo.Create(colID, "b@example.com", 2, "ref-dup", userID); err == nil {
		t.Fatal("duplicate reference accepted")
	}
}
