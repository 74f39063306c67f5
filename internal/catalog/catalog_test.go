package catalog_test

import (
	"errors"
	"testing"

	"marketpaline/internal/catalog"
	"marketpaline/internal/domain"
	"marketpaline/internal/navigation"
)

func TestLookup(t *testing.T) {
	v, err := catalog.Lookup(" Property ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !v.HasRole(navigation.RoleLandlord) || v.HasRole(navigation.RoleBuyer) {
		t.Fatalf("unexpected roles: %v", v.Roles)
	}
	if _, err := catalog.Lookup("boats"); !errors.Is(err, domain.ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestForSaleBucketMembership(t *testing.T) {
	v, _ := catalog.Lookup(catalog.General)
	b, ok := v.Bucket("for_sale")
	if !ok {
		t.Fatalf("for_sale bucket missing")
	}
	for _, c := range []domain.Category{domain.CategoryLandSale, domain.CategoryHouseSale, domain.CategoryCarSale, domain.CategoryElectronicsSale} {
		if !b.Matches(c) {
			t.Fatalf("for_sale should match %s", c)
		}
	}
	for _, c := range []domain.Category{domain.CategoryHouseRental, domain.CategoryCarHire, domain.CategoryEventVenueHire} {
		if b.Matches(c) {
			t.Fatalf("for_sale should not match %s", c)
		}
	}

	car, _ := v.Bucket("car")
	if !car.Matches(domain.CategoryCarHire) || !car.Matches(domain.CategoryCarSale) || car.Matches(domain.CategoryLandSale) {
		t.Fatalf("car bucket mismatch")
	}

	plain, _ := v.Bucket("house_rental")
	if !plain.Matches(domain.CategoryHouseRental) || plain.Matches(domain.CategoryHouseSale) {
		t.Fatalf("plain bucket should match only its category")
	}
}

func TestBucketFallsBackToAll(t *testing.T) {
	v, _ := catalog.Lookup(catalog.General)
	b, ok := v.Bucket("spaceships")
	if ok || !b.All() {
		t.Fatalf("unknown bucket should resolve to all, got %+v ok=%v", b, ok)
	}
	b, ok = v.Bucket("")
	if !ok || !b.All() {
		t.Fatalf("empty bucket should be all")
	}
}

func TestLoadFixtures(t *testing.T) {
	for _, name := range catalog.Names() {
		fx, err := catalog.LoadFixtures(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(fx.Listings) == 0 || len(fx.Messages) == 0 || len(fx.Notifications) == 0 {
			t.Fatalf("%s: empty fixtures", name)
		}
		for _, l := range fx.Listings {
			if l.Variant != name {
				t.Fatalf("%s: listing %d has variant %q", name, l.ID, l.Variant)
			}
			for _, r := range l.Reviews {
				if r.ListingID != l.ID {
					t.Fatalf("review %d not bound to listing %d", r.ID, l.ID)
				}
			}
		}
	}
}

func TestLoadFixtures_ListingIDsAreDisjoint(t *testing.T) {
	seen := map[int64]string{}
	for _, name := range catalog.Names() {
		fx, err := catalog.LoadFixtures(name)
		if err != nil {
			t.Fatal(err)
		}
		for _, l := range fx.Listings {
			if prev, dup := seen[l.ID]; dup {
				t.Fatalf("listing %d in both %s and %s", l.ID, prev, name)
			}
			seen[l.ID] = name
		}
	}
}
