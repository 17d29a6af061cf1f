package repository

import (
	"testing"

	"vntrips/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCategoryFilterToBSON(t *testing.T) {
	active := true
	level := 1

	f := CategoryFilter{
		Type:   model.TypeVietnamTours,
		Active: &active,
		Level:  &level,
		Parent: "65a000000000000000000101",
		Region: model.RegionNorth,
	}

	filter := f.toBSON()

	if filter["type"] != model.TypeVietnamTours {
		t.Errorf("type = %v, want %v", filter["type"], model.TypeVietnamTours)
	}
	if filter["is_active"] != true {
		t.Errorf("is_active = %v, want true", filter["is_active"])
	}
	if filter["level"] != 1 {
		t.Errorf("level = %v, want 1", filter["level"])
	}
	if filter["parent"] != "65a000000000000000000101" {
		t.Errorf("parent = %v", filter["parent"])
	}

	// Categories tagged "all" surface in every regional listing.
	region, ok := filter["region"].(bson.M)
	if !ok {
		t.Fatalf("region filter = %v", filter["region"])
	}
	regions := region["$in"].([]model.Region)
	if len(regions) != 2 || regions[0] != model.RegionNorth || regions[1] != model.RegionAll {
		t.Errorf("region $in = %v", regions)
	}
}

func TestCategoryFilterToBSON_AllRegionIsNoFilter(t *testing.T) {
	f := CategoryFilter{Region: model.RegionAll}
	if _, ok := f.toBSON()["region"]; ok {
		t.Error("region=all should not constrain the query")
	}
}

func TestCategoryFilterToBSON_EmptyFilter(t *testing.T) {
	if filter := (CategoryFilter{}).toBSON(); len(filter) != 0 {
		t.Errorf("empty filter = %v, want no constraints", filter)
	}
}
